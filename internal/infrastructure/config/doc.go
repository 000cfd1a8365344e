// Package config handles loading and validating the device configuration
// service settings.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with DEVICESCFG_* environment variables
//   - Validation of required fields
//
// Secrets (MQTT password, InfluxDB token, JWT secret) should be supplied via
// environment variables rather than committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Service.Name)
package config
