package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPISpec locates the openapi.yaml file by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

// TestOpenAPISpec validates the OpenAPI specification is valid.
func TestOpenAPISpec(t *testing.T) {
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	// Check that key paths exist
	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/meetings/search",
		"/v1/midpoint",
		"/v1/venues/nearby",
		"/v1/travel/time",
		"/v1/travel/compare",
		"/v1/users/{id}/history",
		"/v1/users/{id}/preferences",
		"/v1/users/{id}/preferences/{key}",
		"/v1/users/{id}/memory",
		"/v1/stats",
	}
	for _, path := range expectedPaths {
		if spec.Paths.Find(path) == nil {
			t.Errorf("expected path %s in spec", path)
		}
	}
}

// TestOpenAPISpecDeprecations verifies legacy aliases carry the deprecated flag.
func TestOpenAPISpecDeprecations(t *testing.T) {
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	item := spec.Paths.Find("/v1/meetings/midpoint")
	if item == nil {
		t.Fatal("expected legacy /v1/meetings/midpoint path in spec")
	}
	if item.Get == nil || !item.Get.Deprecated {
		t.Error("legacy midpoint alias should be marked deprecated")
	}
}
