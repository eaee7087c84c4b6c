package views

// Sheet identifies one table of a session export. Each sheet is written as
// its own CSV file in the session directory.
type Sheet int

const (
	SheetTotal Sheet = iota
	SheetDecibel
	SheetAccelerometer
	SheetGyroscope
)

// Sheets lists every export table in write order.
var Sheets = []Sheet{SheetTotal, SheetDecibel, SheetAccelerometer, SheetGyroscope}

var sheetNames = map[Sheet]string{
	SheetTotal:         "total",
	SheetDecibel:       "decibel",
	SheetAccelerometer: "accelerometer",
	SheetGyroscope:     "gyroscope",
}

func (s Sheet) String() string {
	if n, ok := sheetNames[s]; ok {
		return n
	}
	return "unknown"
}

// FileName returns the CSV file name for the sheet.
func (s Sheet) FileName() string { return s.String() + ".csv" }

// Columns returns the canonical header for the sheet.
func (s Sheet) Columns() []string { return SchemaColumns[s] }

// SchemaColumns is the single source of truth for column ordering.
var SchemaColumns = map[Sheet][]string{
	SheetTotal:         {"Time", "Decibel", "Ax", "Ay", "Az", "Rx", "Ry", "Rz"},
	SheetDecibel:       {"Time", "Sample"},
	SheetAccelerometer: {"Time", "Ax", "Ay", "Az", "Linear Acceleration"},
	SheetGyroscope:     {"Time", "Rx", "Ry", "Rz", "Angular Acceleration"},
}
