package common

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

func getSnowflakeNode() *snowflake.Node {
	snowflakeOnce.Do(func() {
		node, err := snowflake.NewNode(int64(rand.Intn(1023)))
		if err != nil {
			panic(err)
		}
		snowflakeNode = node
	})
	return snowflakeNode
}

// UUIDint64 returns a process-unique int64 identifier.
func UUIDint64() int64 {
	return getSnowflakeNode().Generate().Int64()
}

// UUID returns a process-unique string identifier.
func UUID() string {
	return getSnowflakeNode().Generate().String()
}

func IfEmptyStr(src string, defval string) string {
	if src == "" {
		return defval
	}
	return src
}

// Int64String formats an int64 id without scientific notation.
func Int64String(v int64) string {
	return fmt.Sprintf("%d", v)
}
