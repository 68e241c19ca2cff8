package report

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/avichaydahan/brandlight-reports/internal/model"
	"github.com/avichaydahan/brandlight-reports/internal/pdf"
	reporthtml "github.com/avichaydahan/brandlight-reports/internal/report/html"
)

// Print header/footer run inside Chromium's print context, so they use its
// template classes (date, pageNumber, totalPages) rather than our renderer.
const (
	printHeader = `<div style="font-size:8px; width:100%%; padding:0 24px; color:#5a6b7e;">
  <span>%s</span><span style="float:right" class="date"></span>
</div>`
	printFooter = `<div style="font-size:8px; width:100%; padding:0 24px; color:#5a6b7e; text-align:center;">
  Page <span class="pageNumber"></span> of <span class="totalPages"></span>
</div>`
)

// buildDocument assembles the cover and content HTML for a PDF job. Report
// content sections are placeholder copy until the analytics renderers land;
// the surrounding pipeline (fetch, print, merge, upload, status) is final.
func (o *Orchestrator) buildDocument(ctx context.Context, job model.DownloadJob, meta model.ReportMetadata, itemCount int) (pdf.Document, error) {
	title := metaTitle(meta, job)

	var logoURI template.URL
	if meta.BrandLogoURL != "" {
		uri, err := pdf.FetchLogoDataURI(ctx, meta.BrandLogoURL)
		if err != nil {
			// A broken logo should not sink the report.
			slog.WarnContext(ctx, "brandlight_reports.report.logo_fetch_failed",
				slog.String("download_id", job.DownloadID), slog.String("error", err.Error()))
		} else {
			logoURI = template.URL(uri)
		}
	}

	cover, err := reporthtml.RenderCover(reporthtml.CoverData{
		Title:       title,
		BrandName:   brandName(meta, job),
		TenantID:    job.TenantID,
		LogoDataURI: logoURI,
		GeneratedAt: o.now().UTC(),
		DateRange:   dateRangeLabel(meta.DateRange),
	})
	if err != nil {
		return pdf.Document{}, err
	}

	content, err := reporthtml.RenderContent(reporthtml.ContentData{
		Title:       title,
		BrandName:   brandName(meta, job),
		GeneratedAt: o.now().UTC(),
		ItemCount:   itemCount,
		Sections:    contentSections(job.ReportType),
	})
	if err != nil {
		return pdf.Document{}, err
	}

	return pdf.Document{
		CoverHTML:      cover,
		ContentHTML:    content,
		HeaderTemplate: fmt.Sprintf(printHeader, template.HTMLEscapeString(title)),
		FooterTemplate: printFooter,
	}, nil
}

func contentSections(rt model.ReportType) []reporthtml.Section {
	switch rt {
	case model.ReportTypeSingleDomain:
		return []reporthtml.Section{
			{Heading: "Domain Visibility", Body: "Share of answer-engine responses referencing the domain across the selected period."},
			{Heading: "Sentiment Overview", Body: "Distribution of positive, neutral and negative mentions attributed to the domain."},
			{Heading: "Top Queries", Body: "Queries with the highest citation frequency for the domain."},
		}
	default:
		return []reporthtml.Section{
			{Heading: "Partnership Overview", Body: "Combined visibility of the brand and its partners across the monitored engines."},
			{Heading: "Influence Breakdown", Body: "Relative contribution of each partner domain to overall answer coverage."},
			{Heading: "Opportunities", Body: "Categories where partner coverage exceeds the brand's own presence."},
		}
	}
}

func brandName(meta model.ReportMetadata, job model.DownloadJob) string {
	if meta.BrandName != "" {
		return meta.BrandName
	}
	return job.BrandID
}

func dateRangeLabel(dr *model.DateRange) string {
	if dr == nil {
		return ""
	}
	switch {
	case dr.Start != "" && dr.End != "":
		return dr.Start + " - " + dr.End
	case dr.Start != "":
		return "from " + dr.Start
	case dr.End != "":
		return "until " + dr.End
	default:
		return ""
	}
}
