package logger

import "log/slog"

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Operation names the client call being logged, e.g. "login" or "todos.list".
func Operation(name string) slog.Attr {
	return slog.String("op", name)
}

func UserID(id int64) slog.Attr {
	if id == 0 {
		return slog.Attr{}
	}
	return slog.Int64("user_id", id)
}

func Username(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("username", name)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Status logs an HTTP status code. Zero (no response) is omitted.
func Status(code int) slog.Attr {
	if code == 0 {
		return slog.Attr{}
	}
	return slog.Int("status", code)
}

func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

func Key(k string) slog.Attr {
	return slog.String("key", k)
}
