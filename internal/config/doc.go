// Package config provides configuration structures and utilities for empreport.
// It defines the main configuration options for loading employee records,
// statistics computation, and report generation preferences.
package config
