package discovery

import (
	"encoding/json"
	"strings"

	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
)

// legacyLicense is the old {type, url} license object
type legacyLicense struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// ExtractLicense returns the declared license of an installed package.
//
// The "license" field wins when set, either as a string or as a legacy
// {type, url} object. Otherwise the legacy "licenses" array is joined with
// " OR ". A manifest with neither yields ecosystem.UnknownLicense.
func ExtractLicense(p *InstalledManifest) string {
	if license := licenseValue(p.License); license != "" {
		return license
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(p.Licenses, &entries); err == nil {
		types := make([]string, 0, len(entries))
		for _, entry := range entries {
			if license := licenseValue(entry); license != "" {
				types = append(types, license)
			}
		}
		if len(types) > 0 {
			return strings.Join(types, " OR ")
		}
	}

	return ecosystem.UnknownLicense
}

// licenseValue decodes a single license entry given as a string or an object
func licenseValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj legacyLicense
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Type)
	}

	return ""
}
