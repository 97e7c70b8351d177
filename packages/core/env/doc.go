// Package env handles variables and {{ }} interpolation for softspec
// scenario files.
//
// It provides:
//   - .env file loading
//   - environment selection from the config file
//   - {{variable}}, {{$ENV_VAR}} and {{function(args)}} interpolation
//   - values captured by earlier steps of the same scenario
package env
