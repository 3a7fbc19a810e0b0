// Package config loads and validates configuration for the SmartIR
// dispatch tools.
//
// Configuration is layered: hardcoded defaults, then an optional YAML
// file, then SMARTIR_* environment variables. The environment layer
// exists because the batch sender is usually driven from a shell or CI
// job where exporting SMARTIR_MQTT_HOST is more convenient than
// writing a config file.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	client, err := mqtt.Connect(cfg.MQTT)
package config
