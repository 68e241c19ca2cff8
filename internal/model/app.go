package model

const (
	AppServiceName = "brandlight_reports"
	NamespaceName  = "brandlight"
	CurrentVersion = "25.08"
)
