package errors

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// ValidateResourceName checks that a resource carries an identity.
// Only a missing name is fatal: the name becomes the node id and the graph is
// keyed by it.
func ValidateResourceName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidResource, "%s is missing metadata.name", kind)
	}
	return nil
}

// NameWarnings reports why name is not a valid DNS-1123 subdomain, which is
// what the API server would require. The findings are advisory.
func NameWarnings(name string) []string {
	if name == "" {
		return nil
	}
	return validation.IsDNS1123Subdomain(name)
}
