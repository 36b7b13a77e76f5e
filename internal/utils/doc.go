// Package utils exposes reusable helpers consumed by the CLI and the audit command.
//
// ConfigurationLoader merges embedded defaults, configuration files, and
// environment variables through Viper. LoggerFactory builds zap loggers that
// write to standard error. FlushingWriter keeps interactive prompts visible.
package utils
