// Package files is the Drive file browser controller.
package files
