// Package main 启动应用程序
package main

import "github.com/yeisme/trackvault/pkg/cmd"

//	@title			TrackVault API
//	@version		1.0
//	@description	TrackVault 管理音乐项目及其音频、歌词文件，提供项目增删改查、文件上传与仪表盘统计。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
