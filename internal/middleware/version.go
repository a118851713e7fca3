package middleware

import (
	"github.com/labstack/echo/v4"
)

// APIVersion describes one served API version.
type APIVersion struct {
	Version string `json:"version"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {Version: "v1", Status: "active", Message: "Current stable API version"},
		},
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			if ver, ok := vm.supportedVersions[version]; ok && ver.Message != "" {
				c.Response().Header().Set("X-API-Message", ver.Message)
			}
			return next(c)
		}
	}
}

// VersionRoute creates a version-specific route group
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(vm.VersionHeader(version))
	return group
}

func (vm *VersionMiddleware) Versions() []APIVersion {
	out := make([]APIVersion, 0, len(vm.supportedVersions))
	for _, v := range vm.supportedVersions {
		out = append(out, v)
	}
	return out
}
