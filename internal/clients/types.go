package clients

import (
	"encoding/json"
	"strings"
)

// Meta is the common object metadata block of Endor resources
type Meta struct {
	Name string `json:"name"`
}

// TenantMeta names the namespace an object lives in
type TenantMeta struct {
	Namespace string `json:"namespace"`
}

// Namespace is a tenant-scoped partition of projects
type Namespace struct {
	UUID       string     `json:"uuid"`
	Meta       Meta       `json:"meta"`
	TenantMeta TenantMeta `json:"tenant_meta"`
}

// FullName returns the dotted namespace path used in API routes
func (n Namespace) FullName() string {
	if n.TenantMeta.Namespace == "" {
		return n.Meta.Name
	}
	return n.TenantMeta.Namespace + "." + n.Meta.Name
}

// Project is a scanned source repository
type Project struct {
	UUID string      `json:"uuid"`
	Meta Meta        `json:"meta"`
	Spec ProjectSpec `json:"spec"`
}

type ProjectSpec struct {
	Git *GitInfo `json:"git,omitempty"`
}

type GitInfo struct {
	HTTPCloneURL string `json:"http_clone_url"`
	WebURL       string `json:"web_url"`
}

// DependencyMetadata is one dependency edge of one package version in a
// project, as returned by the query API
type DependencyMetadata struct {
	UUID       string                 `json:"uuid"`
	Meta       DependencyMetadataMeta `json:"meta"`
	TenantMeta TenantMeta             `json:"tenant_meta"`
	Spec       DependencyMetadataSpec `json:"spec"`
}

type DependencyMetadataMeta struct {
	Name       string     `json:"name"`
	References References `json:"references"`
}

// References holds the objects joined onto a query result
type References struct {
	Project *ListResponse[Project] `json:"Project,omitempty"`
}

type DependencyMetadataSpec struct {
	DependencyData DependencyData `json:"dependency_data"`
	ImporterData   ImporterData   `json:"importer_data"`
}

type DependencyData struct {
	PackageName       string `json:"package_name"`
	ResolvedVersion   string `json:"resolved_version"`
	Direct            *bool  `json:"direct,omitempty"`
	Scope             string `json:"scope,omitempty"`
	ParentVersionName string `json:"parent_version_name,omitempty"`
}

type ImporterData struct {
	ProjectUUID        string `json:"project_uuid"`
	PackageVersionName string `json:"package_version_name"`
	PackageVersionUUID string `json:"package_version_uuid,omitempty"`
}

// ListResponse is the envelope of every paginated list
type ListResponse[T any] struct {
	List struct {
		Objects  []T `json:"objects"`
		Response struct {
			NextPageToken PageToken `json:"next_page_token"`
		} `json:"response"`
	} `json:"list"`
}

// PageToken is a continuation token. The API sends it either as a string
// or as a number; zero and empty both mean there are no more pages.
type PageToken string

func (t *PageToken) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		s = n.String()
	}

	s = strings.TrimSpace(s)
	if s == "0" {
		s = ""
	}
	*t = PageToken(s)
	return nil
}
