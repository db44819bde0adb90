package mcp

import (
	"fmt"
	"strings"
)

const (
	packageScheme      = "package://"
	packageURITemplate = packageScheme + "{category}/{name}"
)

func packageURI(category, name string) string {
	return packageScheme + category + "/" + name
}

func parsePackageURI(uri string) (category, name string, err error) {
	rest, ok := strings.CutPrefix(uri, packageScheme)
	if !ok {
		return "", "", fmt.Errorf("invalid resource URI: %s", uri)
	}
	category, name, ok = strings.Cut(rest, "/")
	if !ok || category == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid resource URI: %s", uri)
	}
	return category, name, nil
}
