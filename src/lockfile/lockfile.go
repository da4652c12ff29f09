package lockfile

import (
	"path/filepath"
	"strings"

	"github.com/nightlyone/lockfile"

	"github.com/dataveil/dataveil/src/utils"
)

// Lockfile guards an output directory against concurrent dataveil runs.
// The file name encodes the command holding the lock (".anonymizeLockfile.lck")
// so contention errors can name the other side.
type Lockfile struct {
	fpath    string
	cmdName  string
	lockfile lockfile.Lockfile
}

func NewLockfile(fpath string) *Lockfile {
	return &Lockfile{fpath: fpath}
}

func (l *Lockfile) GetCmdName() string {
	if l.cmdName != "" {
		return l.cmdName
	}

	fname := filepath.Base(l.fpath)
	l.cmdName = fname[1 : len(fname)-len("Lockfile.lck")]
	l.cmdName = strings.Replace(l.cmdName, "-", " ", -1)
	return l.cmdName
}

func (l *Lockfile) Lock() {
	var err error
	l.lockfile, err = lockfile.New(l.fpath)
	if err != nil {
		utils.ErrExit("Failed to create lockfile %q: %v\n", l.fpath, err)
	}

	err = l.lockfile.TryLock()
	if err == nil {
		return
	} else if err == lockfile.ErrBusy {
		utils.ErrExit("Another instance of dataveil '%s' is writing to this output-dir", l.GetCmdName())
	} else {
		utils.ErrExit("Unable to lock the output-dir: %v\n", err)
	}
}

func (l *Lockfile) Unlock() {
	err := l.lockfile.Unlock()
	if err != nil {
		utils.ErrExit("Unable to unlock %q: %v\n", l.lockfile, err)
	}
}
