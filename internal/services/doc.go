// Package services holds the shared error taxonomy and context plumbing for
// external tool wrappers and stage implementations. Subpackages wrap the
// tools themselves.
package services
