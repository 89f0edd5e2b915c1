// 上传文件校验：大小上限 + 真实内容嗅探
//
// 不信任客户端的文件名和 Content-Type，用 mimetype 按魔数识别，
// 再要求声明的扩展名与真实类型一致，拦截改后缀伪装的上传。
// 大小检查必须在嗅探和任何写入之前。
package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"doclocker-admin/internal/shared/model"
)

// MaxUploadSize 单文件上限 10 MiB
const MaxUploadSize = 10 << 20

const mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// 允许的真实 MIME 类型 → 业务文件类别
var allowedTypes = map[string]model.FileType{
	"image/png":          model.FileTypeImage,
	"image/jpeg":         model.FileTypeImage,
	"application/pdf":    model.FileTypePDF,
	"application/msword": model.FileTypeWord,
	mimeDocx:             model.FileTypeWord,
}

// 每种真实类型允许声明的扩展名
var allowedExtensions = map[string][]string{
	"image/png":          {".png"},
	"image/jpeg":         {".jpg", ".jpeg"},
	"application/pdf":    {".pdf"},
	"application/msword": {".doc"},
	mimeDocx:             {".docx"},
}

// sniffError 校验失败，给客户端看的消息
type sniffError struct {
	msg string
}

func (e *sniffError) Error() string { return e.msg }

// ClassifyFile 校验已落盘的上传文件，返回业务类别和真实 Content-Type
//
// path 是临时文件路径，name 是客户端声明的原始文件名。
// size 超限直接拒绝，不读文件内容。返回 *sniffError 表示应答 400。
func ClassifyFile(path, name string, size int64) (model.FileType, string, error) {
	if size > MaxUploadSize {
		return "", "", &sniffError{msg: fmt.Sprintf("file exceeds %d MiB limit", MaxUploadSize>>20)}
	}
	if size == 0 {
		return "", "", &sniffError{msg: "empty file"}
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", "", fmt.Errorf("detect file type: %w", err)
	}

	contentType := mtype.String()
	fileType, ok := allowedTypes[contentType]
	if !ok {
		return "", "", &sniffError{msg: "only PNG, JPEG, PDF, and Word (.doc, .docx) files are allowed"}
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !extensionMatches(contentType, ext) {
		return "", "", &sniffError{msg: fmt.Sprintf("file content is %s but name ends in %q", contentType, ext)}
	}
	return fileType, contentType, nil
}

func extensionMatches(contentType, ext string) bool {
	for _, allowed := range allowedExtensions[contentType] {
		if ext == allowed {
			return true
		}
	}
	return false
}
