package users

type queries struct {
	selectByUsername string
	insertIfAbsent   string
	update           string
	delete           string
}

var postgresQueries = queries{
	selectByUsername: `SELECT username, display_name, email, password_hash, salt, iterations FROM users
		 WHERE username = $1
		 `,
	insertIfAbsent: `INSERT INTO users (username, display_name, email, password_hash, salt, iterations)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (username) DO NOTHING
		 `,
	update: `UPDATE users
		 SET username = $1, display_name = $2, email = $3, password_hash = $4, salt = $5, iterations = $6
		 WHERE username = $7
		 `,
	delete: `DELETE FROM users WHERE username = $1`,
}

var sqliteQueries = queries{
	selectByUsername: `SELECT username, display_name, email, password_hash, salt, iterations FROM users
		 WHERE username = ?
		 `,
	insertIfAbsent: `INSERT INTO users (username, display_name, email, password_hash, salt, iterations)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (username) DO NOTHING
		 `,
	update: `UPDATE users
		 SET username = ?, display_name = ?, email = ?, password_hash = ?, salt = ?, iterations = ?
		 WHERE username = ?
		 `,
	delete: `DELETE FROM users WHERE username = ?`,
}
