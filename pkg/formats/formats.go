// Package formats reads and writes the mesh file formats the cloth tools exchange.
package formats
