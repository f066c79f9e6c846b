package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE sessions (
				session_id UUID PRIMARY KEY,
				state JSONB NOT NULL,
				suspension JSONB,
				saved_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_sessions_saved_at ON sessions(saved_at);
		`,
	}
}
