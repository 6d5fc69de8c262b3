// Package config provides configuration management for the render worker.
//
// Configuration is loaded from environment variables and validated on startup.
// Every option has a default suitable for local development; PARTIALS_DIR is
// empty unless set, which disables directory loading.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
