package clients

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

func TestBuildDependencyFilter(t *testing.T) {
	tests := []struct {
		name string
		spec models.DependencySpec
		want string
	}{
		{
			name: "scoped npm package",
			spec: models.DependencySpec{Ecosystem: "npm", Name: "@graphql-tools/wrap", Version: "10.1.4"},
			want: `context.type==CONTEXT_TYPE_MAIN and spec.dependency_data.package_name=="npm://@graphql-tools/wrap" and spec.dependency_data.resolved_version=="10.1.4"`,
		},
		{
			name: "maven coordinates",
			spec: models.DependencySpec{Ecosystem: "maven", Name: "org.springframework:spring-core", Version: "5.3.21"},
			want: `context.type==CONTEXT_TYPE_MAIN and spec.dependency_data.package_name=="maven://org.springframework:spring-core" and spec.dependency_data.resolved_version=="5.3.21"`,
		},
		{
			name: "quotes and backslashes are escaped",
			spec: models.DependencySpec{Ecosystem: "npm", Name: `we"ird\pkg`, Version: "1.0.0"},
			want: `context.type==CONTEXT_TYPE_MAIN and spec.dependency_data.package_name=="npm://we\"ird\\pkg" and spec.dependency_data.resolved_version=="1.0.0"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDependencyFilter(tt.spec))
		})
	}
}

func TestBuildDependencyQuery(t *testing.T) {
	spec := models.DependencySpec{Ecosystem: "npm", Name: "lodash", Version: "4.17.21"}
	q := BuildDependencyQuery(spec, true, 50)

	b, err := json.Marshal(q)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))

	qs := got["spec"].(map[string]interface{})["query_spec"].(map[string]interface{})
	assert.Equal(t, "DependencyMetadata", qs["kind"])

	params := qs["list_parameters"].(map[string]interface{})
	assert.Equal(t, true, params["traverse"])
	assert.Equal(t, float64(50), params["page_size"])
	assert.NotContains(t, params, "page_token")
	assert.Contains(t, params["filter"], `package_name=="npm://lodash"`)

	refs := qs["references"].([]interface{})
	require.Len(t, refs, 1)
	ref := refs[0].(map[string]interface{})
	assert.Equal(t, "spec.importer_data.project_uuid", ref["connect_from"])
	assert.Equal(t, "uuid", ref["connect_to"])
	assert.Equal(t, "Project", ref["query_spec"].(map[string]interface{})["kind"])

	q = BuildDependencyQuery(spec, false, 0)
	assert.False(t, q.Spec.QuerySpec.ListParameters.Traverse)
	assert.Zero(t, q.Spec.QuerySpec.ListParameters.PageSize)
}
