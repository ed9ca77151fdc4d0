// schedctl 班级人数分配与教室可用性的命令行工具，另提供数据库迁移入口。
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
