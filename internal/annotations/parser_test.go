package annotations

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/relay/internal/errors"
)

var testLoc = errors.SourceLocation{File: "user.go", Line: 12, Column: 1}

func TestIsAnnotation(t *testing.T) {
	tests := []struct {
		comment string
		want    bool
	}{
		{"//relay::controller", true},
		{"// relay::route /x", true},
		{"  //relay::service -Name=x", true},
		{"// relay controller", false},
		{"/* relay::controller */", false},
		{"//other::controller", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnnotation(tt.comment))
		})
	}
}

func TestParse(t *testing.T) {
	p := NewParser(DefaultRegistry())

	tests := []struct {
		name    string
		comment string
		kind    Kind
		args    []string
		options map[string]string
	}{
		{
			name:    "bare controller",
			comment: "//relay::controller",
			kind:    ControllerKind,
			options: map[string]string{},
		},
		{
			name:    "controller with base path",
			comment: "//relay::controller -Path=/user",
			kind:    ControllerKind,
			options: map[string]string{"Path": "/user"},
		},
		{
			name:    "space after slashes",
			comment: "// relay::controller -Path=/api/v1/",
			kind:    ControllerKind,
			options: map[string]string{"Path": "/api/v1/"},
		},
		{
			name:    "service with name and capabilities",
			comment: "//relay::service -Name=userService -Implements=UserService,store.Reader",
			kind:    ServiceKind,
			options: map[string]string{"Name": "userService", "Implements": "UserService,store.Reader"},
		},
		{
			name:    "quoted option value",
			comment: `//relay::service -Name="userService"`,
			kind:    ServiceKind,
			options: map[string]string{"Name": "userService"},
		},
		{
			name:    "route with params",
			comment: "//relay::route /getUserById -Params=id",
			kind:    RouteKind,
			args:    []string{"/getUserById"},
			options: map[string]string{"Params": "id"},
		},
		{
			name:    "route with mapped params",
			comment: "//relay::route /add -Params=a:left,b:right",
			kind:    RouteKind,
			args:    []string{"/add"},
			options: map[string]string{"Params": "a:left,b:right"},
		},
		{
			name:    "route with regex path",
			comment: `//relay::route /item/[0-9]+`,
			kind:    RouteKind,
			args:    []string{"/item/[0-9]+"},
			options: map[string]string{},
		},
		{
			name:    "autowired with name",
			comment: "//relay::autowired userService",
			kind:    AutowiredKind,
			args:    []string{"userService"},
			options: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := p.Parse(tt.comment, testLoc)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, a.Kind)
			if diff := cmp.Diff(tt.args, a.Args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.options, a.Options); diff != "" {
				t.Errorf("options mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, testLoc, a.Location)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	p := NewParser(DefaultRegistry())

	tests := []struct {
		name    string
		comment string
	}{
		{"missing kind", "//relay::"},
		{"unknown kind", "//relay::middleware"},
		{"not an annotation", "// just a comment"},
		{"dangling equals", "//relay::controller -Path="},
		{"unterminated string", `//relay::service -Name="user`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.comment, testLoc)
			require.Error(t, err)
			var syntaxErr *errors.SyntaxError
			require.True(t, stderrors.As(err, &syntaxErr), "got %T: %v", err, err)
			assert.Equal(t, errors.SyntaxErrorCode, syntaxErr.ErrorCode())
			assert.Equal(t, "user.go", syntaxErr.Location().File)
		})
	}
}

func TestParseValidationErrors(t *testing.T) {
	p := NewParser(DefaultRegistry())

	tests := []struct {
		name    string
		comment string
		field   string
	}{
		{"route without path", "//relay::route", "args"},
		{"route path without slash", "//relay::route user", "args"},
		{"route with two paths", "//relay::route /a /b", "args"},
		{"controller path without slash", "//relay::controller -Path=user", "Path"},
		{"unknown option", "//relay::controller -Prefix=/x", "Prefix"},
		{"bad capability", "//relay::service -Implements=a.b.C", "Implements"},
		{"bad param", "//relay::route /x -Params=1a", "Params"},
		{"duplicate param", "//relay::route /x -Params=a,a:b", "Params"},
		{"duplicate option", "//relay::controller -Path=/a -Path=/b", "Path"},
		{"controller argument", "//relay::controller /user", "args"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.comment, testLoc)
			require.Error(t, err)
			var vErr *errors.ValidationError
			require.True(t, stderrors.As(err, &vErr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestParseWithoutRegistry(t *testing.T) {
	p := NewParser(nil)
	a, err := p.Parse("//relay::controller -Anything=goes extra", testLoc)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, a.Args)
	assert.Equal(t, "goes", a.Options["Anything"])
}

func TestFlagOption(t *testing.T) {
	p := NewParser(nil)
	a, err := p.Parse("//relay::service -Primary", testLoc)
	require.NoError(t, err)
	v, ok := a.Option("Primary")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestAnnotationHelpers(t *testing.T) {
	a := &Annotation{
		Kind:    RouteKind,
		Args:    []string{"/add"},
		Options: map[string]string{"Params": " a:left , b ,", "Implements": "X"},
	}

	assert.Equal(t, "/add", a.Arg(0))
	assert.Equal(t, "", a.Arg(1))
	assert.Equal(t, "", a.Arg(-1))
	assert.Equal(t, []string{"X"}, a.List("Implements"))
	assert.Nil(t, a.List("Missing"))

	want := []ParamBinding{
		{GoName: "a", RequestName: "left"},
		{GoName: "b", RequestName: "b"},
	}
	if diff := cmp.Diff(want, a.Params()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range DefaultRegistry().Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("core")
	assert.Error(t, err)
	assert.Equal(t, "unknown", UnknownKind.String())
}
