// Package config provides configuration parsing for weave projects.
//
// The configuration is stored in weave.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "storefront",
//	  "manifest": "weave.yaml",
//	  "dev": {
//	    "host": "localhost",
//	    "port": 4000
//	  },
//	  "frame": {
//	    "rate": 60
//	  },
//	  "log": {
//	    "level": "info"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "weave"
//	  },
//	  "publish": {
//	    "bucket": "my-site",
//	    "prefix": "pages/",
//	    "region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Preview:", cfg.DevURL())
package config
