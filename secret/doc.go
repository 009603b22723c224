// Package secret resolves configuration values that carry secrets, such as
// the payload encryption key.
//
// A value is first expanded against the environment (see ExpandEnvStrict).
// A value of the form "secretref:<provider>:<ref>", or one containing such
// references inline, is then resolved through a registered Provider:
//
//	secretref:env:VIEWCACHE_KEY
//	secretref:file:/run/secrets/viewcache_key
//
// Providers must never log the values they return.
package secret
