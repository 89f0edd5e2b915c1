package document

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"doclocker-admin/internal/apiserver/audit"
	"doclocker-admin/internal/apiserver/auth"
	"doclocker-admin/internal/shared/blobstore"
	"doclocker-admin/internal/shared/model"
	"doclocker-admin/internal/shared/storage"
)

// Handler 文档 HTTP 处理器
type Handler struct {
	store storage.PersistentStore
	blobs blobstore.Store
	audit *audit.Recorder
	geo   auth.LocationResolver

	// 可选指标，nil 时不上报
	uploads     prometheus.Counter
	uploadBytes prometheus.Counter
}

// NewHandler 创建文档处理器
func NewHandler(store storage.PersistentStore, blobs blobstore.Store, recorder *audit.Recorder, geo auth.LocationResolver) *Handler {
	return &Handler{store: store, blobs: blobs, audit: recorder, geo: geo}
}

// SetMetrics 挂接上传计数器
func (h *Handler) SetMetrics(uploads, uploadBytes prometheus.Counter) {
	h.uploads = uploads
	h.uploadBytes = uploadBytes
}

// RegisterRoutes 注册文档相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/documents", h.Upload)
	mux.HandleFunc("GET /api/v1/documents", h.List)
	mux.HandleFunc("GET /api/v1/documents/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Get)
	mux.HandleFunc("GET /api/v1/documents/{id}/content", h.Content)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.Delete)
	mux.HandleFunc("PATCH /api/v1/documents/{id}/favorite", h.ToggleFavorite)
}

// ============================================================================
// Handlers
// ============================================================================

// Upload 上传文档（multipart，字段名 file）
//
// 流程：落盘到临时文件 → 大小/内容校验 → 写对象存储 → 插元数据 →
// 累加属主存储用量 → 审计。大小校验在一切写入之前。
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	// 请求体兜底上限：文件上限 + multipart 报文开销
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	// 落盘临时文件，之后的嗅探和对象存储写入都从这里读。
	// 最多只落 MaxUploadSize+1 字节：超限文件在这里就被截断，
	// 由 ClassifyFile 按 size 统一拒绝，不会触达对象存储或数据库。
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		log.Printf("[document.upload] CreateTemp error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		log.Printf("[document.upload] spool error: %v", err)
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	fileType, contentType, err := ClassifyFile(tmp.Name(), header.Filename, size)
	if err != nil {
		var ve *sniffError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		log.Printf("[document.upload] ClassifyFile error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	storedName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	blobKey := user.StudentID + "/" + storedName

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		log.Printf("[document.upload] Seek error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.blobs.Put(r.Context(), blobKey, tmp, size, contentType); err != nil {
		log.Printf("[document.upload] blob Put error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	now := time.Now()
	doc := &model.Document{
		ID:        generateID("doc"),
		StudentID: user.StudentID,
		FileName:  storedName,
		FilePath:  blobKey,
		FileSize:  size,
		FileType:  fileType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateDocument(r.Context(), doc); err != nil {
		log.Printf("[document.upload] CreateDocument error: %v", err)
		// 元数据失败时回收已写入的对象
		if derr := h.blobs.Delete(r.Context(), blobKey); derr != nil {
			log.Printf("[document.upload] orphan blob cleanup error: %v", derr)
		}
		writeError(w, http.StatusInternalServerError, "failed to save document")
		return
	}

	if err := h.store.AddUserStorage(r.Context(), user.ID, size); err != nil {
		log.Printf("[document.upload] AddUserStorage error: %v", err)
	}

	ip := auth.ClientIP(r)
	h.audit.Record(user.ID, model.ActionUploadDocument, ip, h.geo.Resolve(r.Context(), ip))
	if h.uploads != nil {
		h.uploads.Inc()
		h.uploadBytes.Add(float64(size))
	}

	log.Printf("[document] Uploaded %s (%d bytes, %s) for %s", storedName, size, fileType, user.StudentID)
	writeJSON(w, http.StatusCreated, doc)
}

// List 列出当前用户的全部文档
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	docs, err := h.store.ListDocumentsByOwner(r.Context(), user.StudentID)
	if err != nil {
		log.Printf("[document.list] ListDocumentsByOwner error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "total": len(docs)})
}

// Search 在当前用户的文档内按文件名做大小写不敏感子串搜索
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	docs, err := h.store.SearchDocumentsByOwner(r.Context(), user.StudentID, query)
	if err != nil {
		log.Printf("[document.search] SearchDocumentsByOwner error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "total": len(docs)})
}

// Get 获取单个文档的元数据，同时计一次下载
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	doc := h.ownedDocument(w, r, user)
	if doc == nil {
		return
	}

	if err := h.store.IncrementDownloadCount(r.Context(), doc.ID); err != nil {
		log.Printf("[document.get] IncrementDownloadCount error: %v", err)
	} else {
		doc.DownloadCount++
	}

	ip := auth.ClientIP(r)
	h.audit.Record(user.ID, model.ActionDownloadDocument, ip, h.geo.Resolve(r.Context(), ip))

	writeJSON(w, http.StatusOK, doc)
}

// Content 下载文档二进制内容
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	doc := h.ownedDocument(w, r, user)
	if doc == nil {
		return
	}

	reader, err := h.blobs.Get(r.Context(), doc.FilePath)
	if err != nil {
		log.Printf("[document.content] blob Get error: %v", err)
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentTypeFor(doc.FileType))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("[document.content] stream error: %v", err)
	}
}

// Delete 删除文档：先删对象，再删记录，最后回退存储用量
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	doc := h.ownedDocument(w, r, user)
	if doc == nil {
		return
	}

	if err := h.blobs.Delete(r.Context(), doc.FilePath); err != nil {
		// 对象删除失败不阻断：元数据为准，残留对象靠运维清理
		log.Printf("[document.delete] blob Delete error: %v", err)
	}

	if err := h.store.DeleteDocument(r.Context(), doc.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		log.Printf("[document.delete] DeleteDocument error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	if err := h.store.AddUserStorage(r.Context(), user.ID, -doc.FileSize); err != nil {
		log.Printf("[document.delete] AddUserStorage error: %v", err)
	}

	ip := auth.ClientIP(r)
	h.audit.Record(user.ID, model.ActionDeleteDocument, ip, h.geo.Resolve(r.Context(), ip))

	log.Printf("[document] Deleted %s (%s) for %s", doc.FileName, doc.ID, user.StudentID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

// ToggleFavorite 收藏标记取反
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	doc := h.ownedDocument(w, r, user)
	if doc == nil {
		return
	}

	newState := !doc.IsFavorite
	if err := h.store.SetDocumentFavorite(r.Context(), doc.ID, newState); err != nil {
		log.Printf("[document.favorite] SetDocumentFavorite error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update favorite")
		return
	}
	doc.IsFavorite = newState

	ip := auth.ClientIP(r)
	h.audit.Record(user.ID, model.ActionToggleFavorite, ip, h.geo.Resolve(r.Context(), ip))

	writeJSON(w, http.StatusOK, doc)
}

// ownedDocument 取路径里的文档并校验属主
//
// 不存在和属主不符都返回同一个 404，避免向非属主泄露文档是否存在。
// 返回 nil 表示响应已写出。
func (h *Handler) ownedDocument(w http.ResponseWriter, r *http.Request, user *model.User) *model.Document {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return nil
	}

	doc, err := h.store.GetDocument(r.Context(), id)
	if err != nil {
		log.Printf("[document] GetDocument error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if doc == nil || doc.StudentID != user.StudentID {
		writeError(w, http.StatusNotFound, "document not found")
		return nil
	}
	return doc
}

func contentTypeFor(t model.FileType) string {
	if t == model.FileTypePDF {
		return "application/pdf"
	}
	return "application/octet-stream"
}
