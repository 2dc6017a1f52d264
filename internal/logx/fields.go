package logx

import "time"

// Field is one structured key-value pair.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err logs err under "err"; a nil error is logged as nil.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "err", Value: nil}
	}
	return Field{Key: "err", Value: err.Error()}
}

// TaskID, UserID and Action are the keys every task log line is searched by.

func TaskID(id int64) Field { return Int64("task_id", id) }

func UserID(id int64) Field { return Int64("user_id", id) }

func Action(action string) Field { return String("action", action) }
