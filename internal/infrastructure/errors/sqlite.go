package errors

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Extended result codes take precedence over the primary code they refine.
// Every busy and locked variant maps to ErrCodeBusy: another viewer window
// holds the settings file and the store retries.
var sqliteExtendedCodes = map[sqlite3.ErrNoExtended]ErrorCode{
	sqlite3.ErrBusyRecovery:         ErrCodeBusy,
	sqlite3.ErrBusySnapshot:         ErrCodeBusy,
	sqlite3.ErrLockedSharedCache:    ErrCodeBusy,
	sqlite3.ErrConstraintUnique:     ErrCodeDuplicate,
	sqlite3.ErrConstraintPrimaryKey: ErrCodeDuplicate,
	sqlite3.ErrConstraintCheck:      ErrCodeValidation,
	sqlite3.ErrConstraintNotNull:    ErrCodeValidation,
	sqlite3.ErrConstraintForeignKey: ErrCodeConstraint,
	sqlite3.ErrConstraintTrigger:    ErrCodeConstraint,
	sqlite3.ErrConstraintRowID:      ErrCodeConstraint,
	sqlite3.ErrReadonlyDbMoved:      ErrCodeConnection,
}

var sqliteCodes = map[sqlite3.ErrNo]ErrorCode{
	sqlite3.ErrBusy:       ErrCodeBusy,
	sqlite3.ErrLocked:     ErrCodeBusy,
	sqlite3.ErrConstraint: ErrCodeConstraint,
	sqlite3.ErrCorrupt:    ErrCodeCorruption,
	sqlite3.ErrNotADB:     ErrCodeCorruption,
	sqlite3.ErrPerm:       ErrCodePermission,
	sqlite3.ErrAuth:       ErrCodePermission,
	sqlite3.ErrReadonly:   ErrCodePermission,
	sqlite3.ErrCantOpen:   ErrCodeConnection,
	sqlite3.ErrIoErr:      ErrCodeConnection,
	sqlite3.ErrFull:       ErrCodeDiskSpace,
	sqlite3.ErrSchema:     ErrCodeSchema,
	sqlite3.ErrMisuse:     ErrCodeInternal,
}

// sqliteMessages classifies driver errors that reached us as text only,
// such as those rewrapped by the migration runner. Order matters: the first
// matching fragment wins.
var sqliteMessages = []struct {
	fragment string
	code     ErrorCode
}{
	{"database is locked", ErrCodeBusy},
	{"database table is locked", ErrCodeBusy},
	{"database is busy", ErrCodeBusy},
	{"unique constraint", ErrCodeDuplicate},
	{"check constraint", ErrCodeValidation},
	{"not null constraint", ErrCodeValidation},
	{"foreign key constraint", ErrCodeConstraint},
	{"no such table", ErrCodeSchema},
	{"no such column", ErrCodeSchema},
	{"database disk image is malformed", ErrCodeCorruption},
	{"file is not a database", ErrCodeCorruption},
	{"unable to open database file", ErrCodeConnection},
	{"attempt to write a readonly database", ErrCodePermission},
	{"permission denied", ErrCodePermission},
	{"disk full", ErrCodeDiskSpace},
	{"no space left", ErrCodeDiskSpace},
}

// classifySQLiteError maps a go-sqlite3 error to an ErrorCode. It returns
// ErrCodeUnknown for anything the settings store does not recognise.
func classifySQLiteError(err error) ErrorCode {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if code, ok := sqliteExtendedCodes[sqliteErr.ExtendedCode]; ok {
			return code
		}
		if code, ok := sqliteCodes[sqliteErr.Code]; ok {
			return code
		}
		return ErrCodeUnknown
	}

	msg := strings.ToLower(err.Error())
	for _, m := range sqliteMessages {
		if strings.Contains(msg, m.fragment) {
			return m.code
		}
	}
	return ErrCodeUnknown
}
