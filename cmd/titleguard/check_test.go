package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCheck_ValidTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runCheck(&buf, "Widget 42"))

	var out checkOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, out.Valid)
	assert.Nil(t, out.Message)
}

func TestRunCheck_InvalidTitle(t *testing.T) {
	var buf bytes.Buffer
	err := runCheck(&buf, "a/b")
	require.ErrorIs(t, err, errTitleInvalid)

	var out checkOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.False(t, out.Valid)
	require.NotNil(t, out.Message)
	assert.Equal(t, "Invalid Component Title", out.Message.MessageTitle)
	assert.Contains(t, out.Message.MessageBody, "an invalid character.")
	assert.Contains(t, out.Message.MessageBody, "Remove or change / and try saving again.")
}

func TestCheckCmd_RequiresOneArg(t *testing.T) {
	err := checkCmd.Args(checkCmd, []string{})
	assert.Error(t, err)
}
