//go:build unit

/*
Copyright (c) DataVeil, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dataveil/dataveil/src/utils"
)

func TestGetVersionInfo(t *testing.T) {
	info := getVersionInfo()
	assert.Contains(t, info, "VERSION="+utils.DATAVEIL_VERSION)
}

func TestLockAndUnlockOutputDir(t *testing.T) {
	restoreFlagDefaults(t)
	outputDir = t.TempDir()
	lockPath := filepath.Join(outputDir, ".anonymizeLockfile.lck")

	assert.Empty(t, captureErrExit(t, func() { lockOutputDir("anonymize") }))
	assert.True(t, utils.FileOrFolderExists(lockPath))

	assert.Empty(t, captureErrExit(t, unlockOutputDir))
	assert.False(t, utils.FileOrFolderExists(lockPath), "unlock must remove the lockfile")
}
