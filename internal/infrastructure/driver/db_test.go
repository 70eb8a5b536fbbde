package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DBConfig
		want string
	}{
		{
			"mysql with protocol",
			DBConfig{User: "root", Password: "pw", Protocol: "tcp", Host: "localhost", Port: 3306, Schema: "learning", Query: "parseTime=true"},
			"root:pw@tcp(localhost:3306)/learning?parseTime=true",
		},
		{
			"postgres style",
			DBConfig{User: "root", Password: "pw", Host: "db", Port: 5432, Schema: "learning"},
			"root:pw@db:5432/learning",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getDSN(&tt.cfg))
		})
	}
}

func TestGetDBConnectionRejectsUnknownDriver(t *testing.T) {
	_, err := GetDBConnection(&DBConfig{Driver: "sqlite"})
	assert.EqualError(t, err, "Unsupported driver: sqlite")
}

func TestMysqlAdapter(t *testing.T) {
	query := `UPDATE "lecture_progress"
		SET last_view_at = $1
		WHERE user_id = $2`
	assert.Equal(t, "UPDATE `lecture_progress` SET last_view_at = ? WHERE user_id = ?", mysqlAdapter(query))
}

func TestLogQueryArgsTruncates(t *testing.T) {
	long := strings.Repeat("a", 80)
	args := logQueryArgs([]interface{}{[]byte{0xde, 0xad}, long, 42})

	assert.Equal(t, "dead", args[0])
	assert.Equal(t, strings.Repeat("a", 64)+" (truncated 16 bytes)", args[1])
	assert.Equal(t, 42, args[2])
}
