package dbsql

import "fmt"

// flexBool scans a SQL boolean regardless of how the driver surfaces it:
// sqlite and mysql hand back integers, mssql hands back bool, CSV-imported
// columns sometimes hand back text.
type flexBool bool

func (b *flexBool) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*b = false
	case bool:
		*b = flexBool(v)
	case int64:
		*b = v != 0
	case float64:
		*b = v != 0
	case []byte:
		return b.scanString(string(v))
	case string:
		return b.scanString(v)
	default:
		return fmt.Errorf("flexBool: unsupported type %T", src)
	}
	return nil
}

func (b *flexBool) scanString(s string) error {
	switch s {
	case "", "0", "false", "False", "FALSE", "f":
		*b = false
	case "1", "true", "True", "TRUE", "t":
		*b = true
	default:
		return fmt.Errorf("flexBool: unsupported value %q", s)
	}
	return nil
}
