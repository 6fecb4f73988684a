// Package utils holds small file helpers shared by the loaders.
package utils
