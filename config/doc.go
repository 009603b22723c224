// Package config loads the viewcache YAML configuration.
//
// Load and Parse fill defaults, unmarshal with gopkg.in/yaml.v3 and validate.
// Secret-bearing values such as persistent.encryption.key are kept verbatim;
// they are resolved later through the secret package.
//
//	cache:
//	  backend: persistent
//	  parallel: true
//	persistent:
//	  driver: sqlite
//	  server: /var/lib/viewcache/views.db
//	  compression: zstd
//	  encryption:
//	    key: secretref:env:VIEWCACHE_KEY
package config
