// 文件: pkg/quote/snowflake.go
// 报价 ID 生成器 (github.com/bwmarrin/snowflake)

package quote

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	initOnce sync.Once
	initErr  error
)

// InitSnowflake 初始化雪花算法，只有第一次调用生效
// nodeID: 节点ID (0-1023)
func InitSnowflake(nodeID int64) error {
	initOnce.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// GenerateQuoteID 生成报价ID
func GenerateQuoteID() int64 {
	// 未初始化则使用默认节点0
	InitSnowflake(0)
	return node.Generate().Int64()
}
