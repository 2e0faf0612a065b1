package upload

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// defaultBaseName 客户端未提供可用文件名时使用.
const defaultBaseName = "upload"

// NewObjectName 生成对象名：<unix_ms>-<base>，base 为去掉目录部分的客户端文件名.
func NewObjectName(now time.Time, clientName string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), BaseName(clientName))
}

// BaseName 去掉客户端文件名中的目录部分（兼容 Windows 分隔符）.
func BaseName(clientName string) string {
	name := strings.ReplaceAll(clientName, `\`, "/")
	name = strings.TrimSpace(path.Base(name))

	switch name {
	case "", ".", "..", "/":
		return defaultBaseName
	}

	return name
}

// ValidName 判断对象名是否可直接作为扁平目录中的文件名.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// PublicPath 返回对象的对外访问路径，例如 /uploads/<name>.
func PublicPath(prefix, name string) string {
	return strings.TrimRight(prefix, "/") + "/" + name
}

// NameFromPath 从存储的 File_path 中取出对象名.
// 同时兼容 /uploads/<name>、本地绝对路径与 s3:// URI 三种形式.
func NameFromPath(p string) string {
	if p == "" {
		return ""
	}

	return path.Base(strings.ReplaceAll(p, `\`, "/"))
}
