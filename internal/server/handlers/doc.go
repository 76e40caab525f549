// Package handlers implements the control server endpoints.
package handlers
