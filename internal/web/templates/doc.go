// Package templates holds the HTML fragments returned to HTMX clients.
package templates
