package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/savekeep/pkg/errors"
)

func TestRunMigration_RejectsNonNumericPID(t *testing.T) {
	err := runMigration(rootCmd, []string{"SNES", "abc"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPID))
}

func TestRunMigration_RejectsNonPositivePID(t *testing.T) {
	for _, pid := range []string{"0", "-4"} {
		err := runMigration(rootCmd, []string{"SNES", pid})
		require.Error(t, err, "pid %s must be rejected", pid)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPID))
	}
}

func TestRootCommand_AcceptsAtMostTwoArgs(t *testing.T) {
	err := rootCmd.Args(rootCmd, []string{"SNES", "1234", "extra"})
	require.Error(t, err)
}
