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

import "github.com/dataveil/dataveil/src/utils"

type DisablePBReporter struct { // Each worker goroutine knows which file its reporter belongs to, no need to add to struct.
	TotalBytes      int64
	CurrentBytes    int64
	IsCompleted     bool
	TriggerComplete bool
}

func newDisablePBReporter() *DisablePBReporter {
	return &DisablePBReporter{TotalBytes: int64(0), CurrentBytes: int64(0), IsCompleted: false, TriggerComplete: false}
}

func (pbr *DisablePBReporter) SetTotal(totalBytes int64, triggerComplete bool) {
	pbr.TriggerComplete = triggerComplete
	if totalBytes < 0 {
		pbr.TotalBytes = pbr.CurrentBytes
	} else {
		pbr.TotalBytes = totalBytes
	}
	if triggerComplete && !pbr.IsCompleted {
		pbr.IsCompleted = true
		pbr.CurrentBytes = pbr.TotalBytes
	}
}

func (pbr *DisablePBReporter) SetCurrent(processedBytes int64) {
	if processedBytes < 0 {
		utils.ErrExit("cannot maintain negative processed byte count in PB")
	}
	pbr.CurrentBytes = processedBytes
	if pbr.TriggerComplete && pbr.CurrentBytes >= pbr.TotalBytes {
		pbr.CurrentBytes = pbr.TotalBytes
		pbr.IsCompleted = true
	}
}

func (pbr *DisablePBReporter) Complete() {
	pbr.SetTotal(-1, true)
}

func (pbr *DisablePBReporter) IsComplete() bool {
	return pbr.IsCompleted
}
