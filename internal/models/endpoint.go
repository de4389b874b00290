package models

import (
	"net/url"
	"strings"
)

const (
	DefaultNamespace = "v1"
	DefaultHost      = "http://localhost:8181"

	// HivesResource is the path segment of the hive collection.
	HivesResource = "hives"
)

// Endpoint holds the connection parameters for the hive REST service.
type Endpoint struct {
	Namespace string `yaml:"namespace"`
	Host      string `yaml:"host"`
}

// DefaultEndpoint returns the endpoint of a local beehive instance.
func DefaultEndpoint() Endpoint {
	return Endpoint{
		Namespace: DefaultNamespace,
		Host:      DefaultHost,
	}
}

// BaseURL returns {host}/{namespace}.
func (e Endpoint) BaseURL() string {
	host := strings.TrimRight(e.Host, "/")
	ns := strings.Trim(e.Namespace, "/")
	if ns == "" {
		return host
	}
	return host + "/" + ns
}

// ResourceURL returns {host}/{namespace}/{resource}[/{id}].
func (e Endpoint) ResourceURL(resource string, id ...string) string {
	u := e.BaseURL() + "/" + strings.Trim(resource, "/")
	for _, part := range id {
		if part == "" {
			continue
		}
		u += "/" + url.PathEscape(part)
	}
	return u
}

// Credentials holds the optional bearer token for the API.
type Credentials struct {
	Token string
}

// IsValid returns true if a token is present.
func (c Credentials) IsValid() bool {
	return c.Token != ""
}
