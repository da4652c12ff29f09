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
package pbreporter

import "github.com/vbauerster/mpb/v8"

type ProgressReporter interface { // Bare minimum required to simulate mpb.bar for per-file progress
	SetTotal(totalBytes int64, triggerComplete bool)
	SetCurrent(processedBytes int64)
	Complete()
	IsComplete() bool
}

func NewFilePB(progressContainer *mpb.Progress, fileName string, disablePb bool) ProgressReporter {
	if disablePb {
		return newDisablePBReporter()
	} else {
		return newEnablePBReporter(progressContainer, fileName)
	}
}
