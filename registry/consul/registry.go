package consul

import (
	"log/slog"
	"net"
	"strconv"
	"time"

	consulapi "github.com/hashicorp/consul/api"

	conf "github.com/avichaydahan/brandlight-reports/config"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/registry"
)

type ConsulRegistry struct {
	registrationConfig *consulapi.AgentServiceRegistration
	client             *consulapi.Client
	stop               chan any
	checkID            string
}

// NewConsulRegistry creates a new Consul registry instance.
func NewConsulRegistry(config *conf.ConsulConfig) (*ConsulRegistry, error) {
	var err error
	entity := ConsulRegistry{}
	if config.Id == "" {
		return nil, errors.Internal(
			"service id is empty! (set it by '-id' flag)",
			errors.WithID("consul.registry.new_consul.check_args.service_id"),
		)
	}
	ip, port, err := net.SplitHostPort(config.PublicAddress)
	if err != nil {
		return nil, errors.Internal(
			"unable to parse address",
			errors.WithID("consul.registry.new_consul.parse_address.error"),
		)
	}
	parsedPort, err := strconv.Atoi(port)
	if err != nil {
		return nil, errors.Internal(
			"unable to parse ip",
			errors.WithID("consul.registry.new_consul.parse_ip.error"),
		)
	}

	consulConfig := consulapi.DefaultConfig()
	consulConfig.Address = config.Address
	entity.client, err = consulapi.NewClient(consulConfig)
	if err != nil {
		return nil, errors.Internal(
			err.Error(),
			errors.WithID("consul.registry.new_consul_registry.consulapi_creation.error"),
		)
	}

	entity.registrationConfig = &consulapi.AgentServiceRegistration{
		ID:      config.Id,
		Name:    registry.ServiceName,
		Port:    parsedPort,
		Address: ip,
		Check: &consulapi.AgentServiceCheck{
			DeregisterCriticalServiceAfter: registry.DeregisterCriticalServiceAfter.String(),
			TTL:                            registry.CheckInterval.String(),
		},
	}
	entity.stop = make(chan any)

	return &entity, nil
}

// Register registers the service with Consul.
func (c *ConsulRegistry) Register() error {
	err := c.client.Agent().ServiceRegister(c.registrationConfig)
	if err != nil {
		return errors.Internal(
			err.Error(),
			errors.WithID("consul.registry.consul.register.error"),
		)
	}
	var checks map[string]*consulapi.AgentCheck
	if checks, err = c.client.Agent().Checks(); err != nil {
		return errors.Internal(
			err.Error(),
			errors.WithID("consul.registry.consul.register.get_checks.error"),
		)
	}

	var serviceCheck *consulapi.AgentCheck
	for _, check := range checks {
		if check.ServiceID == c.registrationConfig.ID {
			serviceCheck = check
		}
	}

	if serviceCheck == nil {
		return errors.Internal(
			"service check not found",
			errors.WithID("consul.registry.consul.register.error"),
		)
	}
	c.checkID = serviceCheck.CheckID
	go c.RunServiceCheck()
	return nil
}

func (c *ConsulRegistry) Deregister() error {
	err := c.client.Agent().ServiceDeregister(c.registrationConfig.ID)
	if err != nil {
		return errors.Internal(
			err.Error(),
			errors.WithID("consul.registry.consul.deregister.error"),
		)
	}
	c.stop <- true
	slog.Info("brandlight_reports.registry.deregistered")
	return nil
}

func (c *ConsulRegistry) doUpdateTTL() error {
	err := c.client.Agent().UpdateTTL(c.checkID, "success", "pass")
	if err != nil {
		slog.Error("brandlight_reports.registry.ttl_update_failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// RunServiceCheck keeps the TTL check passing until Deregister is called.
func (c *ConsulRegistry) RunServiceCheck() error {
	if err := c.doUpdateTTL(); err == nil {
		slog.Info("brandlight_reports.registry.registered")
	}
	defer slog.Info("brandlight_reports.registry.check_stopped")
	ticker := time.NewTicker(registry.CheckInterval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return nil
		case <-ticker.C:
			_ = c.doUpdateTTL()
		}
	}
}
