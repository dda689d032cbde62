// Package server exposes the editor's HTTP API.
package server

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfstamp/compositor"
	"github.com/mgmeyers/pdfstamp/pdfutils"
	"github.com/mgmeyers/pdfstamp/storage"
)

const DefaultBodyLimit = 50 << 20

type Config struct {
	// StaticDir holds the editor's front end. Edited documents are served
	// from the store's output directory at the same root.
	StaticDir string
	BodyLimit int64
	// BaselineFactor is nil for compositor.DefaultBaselineFactor.
	BaselineFactor   *float64
	LineHeightFactor float64
	PreviewDPI       float64
}

type Server struct {
	store  *storage.Store
	config Config
	logger logrus.FieldLogger
}

func New(store *storage.Store, config Config, logger logrus.FieldLogger) *Server {
	if config.BodyLimit <= 0 {
		config.BodyLimit = DefaultBodyLimit
	}
	if config.LineHeightFactor <= 0 {
		config.LineHeightFactor = compositor.DefaultLineHeightFactor
	}
	if config.PreviewDPI <= 0 {
		config.PreviewDPI = 108
	}

	return &Server{store: store, config: config, logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.limitBody())

	r.POST("/upload", s.uploadPDF)
	r.POST("/upload-sign", s.uploadSignature)
	r.GET("/signatures", s.listSignatures)
	r.DELETE("/sign/:filename", s.deleteSignature)
	r.GET("/documents/:filename", s.documentInfo)
	r.GET("/preview/:filename/:page", s.preview)
	r.POST("/save", s.save)
	r.DELETE("/delete/:filename", s.deleteOutput)

	r.Static("/uploads", s.store.UploadDir)
	r.Static("/sign", s.store.SignDir)
	r.NoRoute(s.serveStatic)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		s.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("request")
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.BodyLimit)
		c.Next()
	}
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	entry := s.logger.WithField("path", c.Request.URL.Path)
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Info("request rejected")
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, compositor.ErrSourceMissing), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) uploadPDF(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		s.fail(c, http.StatusBadRequest, errors.New("No file uploaded"))
		return
	}

	src, err := file.Open()
	if err != nil {
		s.fail(c, http.StatusBadRequest, errors.Wrap(err, "opening upload"))
		return
	}
	defer src.Close()

	name, err := s.store.SaveUpload(file.Filename, src)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	s.logger.WithField("filename", name).Info("file uploaded")
	c.JSON(http.StatusOK, gin.H{"filename": name, "url": storage.UploadsPrefix + name})
}

func (s *Server) uploadSignature(c *gin.Context) {
	file, err := c.FormFile("signature")
	if err != nil {
		s.fail(c, http.StatusBadRequest, errors.New("No signature uploaded"))
		return
	}

	src, err := file.Open()
	if err != nil {
		s.fail(c, http.StatusBadRequest, errors.Wrap(err, "opening upload"))
		return
	}
	defer src.Close()

	name, err := s.store.SaveSignature(file.Filename, src)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	s.logger.WithField("filename", name).Info("signature uploaded")
	c.JSON(http.StatusOK, gin.H{"filename": name, "url": storage.SignaturePrefix + name})
}

func (s *Server) listSignatures(c *gin.Context) {
	urls, err := s.store.ListSignatures()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, urls)
}

func (s *Server) deleteSignature(c *gin.Context) {
	name := c.Param("filename")
	if err := s.store.DeleteSignature(name); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	s.logger.WithField("filename", name).Info("signature deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Signature deleted successfully"})
}

func (s *Server) deleteOutput(c *gin.Context) {
	name := c.Param("filename")
	if err := s.store.DeleteOutput(name); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	s.logger.WithField("filename", name).Info("output deleted")
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func (s *Server) documentInfo(c *gin.Context) {
	name := c.Param("filename")

	data, err := s.store.ReadUpload(name)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	doc, err := pdfutils.LoadDocument(bytes.NewReader(data))
	if err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"filename": name, "pages": doc.Geometry()})
}

func (s *Server) preview(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		s.fail(c, http.StatusBadRequest, errors.New("invalid page number"))
		return
	}

	dpi := s.config.PreviewDPI
	if q := c.Query("dpi"); q != "" {
		if v, err := strconv.ParseFloat(q, 64); err == nil && v > 0 && v <= 600 {
			dpi = v
		}
	}

	data, err := s.store.ReadUpload(c.Param("filename"))
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	img, err := pdfutils.RenderPage(data, page-1, dpi)
	if err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return
	}

	var buf bytes.Buffer
	if err := pdfutils.WriteImage(&buf, img, pdfutils.FormatPNG, 0); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type saveRequest struct {
	Filename string             `json:"filename"`
	Actions  compositor.Actions `json:"actions"`
}

func (s *Server) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, errors.Wrap(err, "invalid save request"))
		return
	}

	s.logger.WithFields(logrus.Fields{
		"filename": req.Filename,
		"actions":  len(req.Actions),
	}).Info("processing save")

	name, report, err := s.apply(req.Filename, req.Actions)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":     "/" + name,
		"applied": report.Applied,
		"skipped": report.Skipped,
	})
}

// apply runs one save: load the upload, compose the actions and store the
// result.
func (s *Server) apply(filename string, actions []compositor.Action) (string, compositor.Report, error) {
	data, err := s.store.ReadUpload(filename)
	if err != nil {
		return "", compositor.Report{}, err
	}

	doc, err := pdfutils.LoadDocument(bytes.NewReader(data))
	if err != nil {
		return "", compositor.Report{}, err
	}

	report, err := doc.Stamp(actions, pdfutils.StampOptions{
		BaselineFactor:   s.config.BaselineFactor,
		LineHeightFactor: s.config.LineHeightFactor,
		Images:           s.store,
		Logger:           s.logger.WithField("filename", filename),
	})
	if err != nil {
		return "", report, err
	}

	name, err := s.store.SaveOutput(func(w io.Writer) error {
		return doc.Write(w)
	})
	if err != nil {
		return "", report, err
	}

	s.logger.WithFields(logrus.Fields{
		"filename": filename,
		"output":   name,
		"applied":  report.Applied,
		"skipped":  len(report.Skipped),
	}).Info("document saved")

	return name, report, nil
}

// serveStatic serves edited documents first, then the front end.
func (s *Server) serveStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	roots := []string{s.store.OutputDir}
	if s.config.StaticDir != "" {
		roots = append(roots, s.config.StaticDir)
	}

	for _, root := range roots {
		f, err := http.Dir(root).Open(c.Request.URL.Path)
		if err != nil {
			continue
		}

		info, err := f.Stat()
		f.Close()
		if err != nil || (info.IsDir() && root == s.store.OutputDir) {
			continue
		}

		http.FileServer(http.Dir(root)).ServeHTTP(c.Writer, c.Request)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}
