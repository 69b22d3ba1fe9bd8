// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package deploy

import "strings"

// Links are the client connection details echoed back by a successful
// deployment. Any of them may be empty.
type Links struct {
	Sub      string `json:"sub,omitempty"`
	VLESS    string `json:"vless,omitempty"`
	UUID     string `json:"uuid,omitempty"`
	Trojan   string `json:"trojan,omitempty"`
	Password string `json:"password,omitempty"`
}

// Empty reports whether the payload carried none of the known links.
func (l Links) Empty() bool {
	return l.Sub == "" && l.VLESS == "" && l.Trojan == ""
}

// ParseLinks reads the known fields from a deployment payload. Missing or
// non-string fields, and URLs without the expected shape, are skipped.
func ParseLinks(data map[string]any) Links {
	l := Links{
		Sub:    stringField(data, "sub"),
		VLESS:  stringField(data, "vless"),
		Trojan: stringField(data, "trojan"),
	}
	l.UUID = credential(l.VLESS, "vless://")
	l.Password = credential(l.Trojan, "trojan://")
	return l
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// credential returns the text between scheme and the next '@', or "" when
// either delimiter is missing.
func credential(link, scheme string) string {
	start := strings.Index(link, scheme)
	if start < 0 {
		return ""
	}
	rest := link[start+len(scheme):]
	end := strings.Index(rest, "@")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
