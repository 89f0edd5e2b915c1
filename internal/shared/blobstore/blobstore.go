// Package blobstore 封装上传文件二进制的存储
//
// 两种驱动，由配置选择：
//   - local：本地磁盘，<uploadRoot>/<studentID>/<fileName>
//   - minio：MinIO 对象存储，同样的 key 布局放在 bucket 内
//
// key 统一为 "<studentID>/<fileName>"，由 document 包负责拼装。
package blobstore

import (
	"context"
	"io"
)

// Store 二进制存储抽象
type Store interface {
	// Put 写入对象
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Get 读取对象，调用方负责关闭返回的 ReadCloser
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete 删除单个对象；对象不存在不报错
	Delete(ctx context.Context, key string) error

	// DeletePrefix 删除指定前缀下的全部对象（级联删除用户目录）
	DeletePrefix(ctx context.Context, prefix string) error
}
