// Package linking hands outbound wallet links to the operating system.
package linking
