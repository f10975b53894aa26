package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/campusmedia/gallery/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordFromArg(t *testing.T) {
	var out bytes.Buffer
	cmd := HashPasswordCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"s3cret"})

	require.NoError(t, cmd.Execute())
	assert.NoError(t, service.ComparePassword("s3cret", strings.TrimSpace(out.String())))
}

func TestHashPasswordFromStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := HashPasswordCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.NoError(t, service.ComparePassword("from-stdin", strings.TrimSpace(out.String())))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	cmd := HashPasswordCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}
