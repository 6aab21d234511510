package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docforge/internal/config"
	"docforge/internal/convert"
	"docforge/internal/domain"
	"docforge/internal/workspace"
)

type API struct {
	cfg          config.Config
	workspaces   workspace.Allocator
	runner       convert.Runner
	capabilities []domain.Capability
}

func NewAPI(cfg config.Config, ws workspace.Allocator, runner convert.Runner) *API {
	return &API{
		cfg:          cfg,
		workspaces:   ws,
		runner:       runner,
		capabilities: domain.Capabilities(),
	}
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/", api.handleListCapabilities)
	r.GET("/health", api.handleHealth)

	conv := r.Group("/convert")
	{
		conv.POST("/word-to-pdf", api.handleWordToPDF)
		conv.POST("/pdf-to-word", api.handlePDFToWord)
		conv.POST("/pdf-to-jpg", api.handlePDFToJPG)
		conv.POST("/jpg-to-pdf", api.handleJPGToPDF)
		conv.POST("/html-to-pdf", api.handleHTMLToPDF)
		conv.POST("/ppt-to-pdf", api.handlePPTToPDF)
		conv.POST("/excel-to-pdf", api.handleExcelToPDF)
		conv.POST("/images-to-pdf", api.handleImagesToPDF)
		conv.POST("/pdf-to-pptx", api.handlePDFToPPTX)
		conv.POST("/pdf-to-excel", api.handlePDFToExcel)
	}

	r.POST("/compress/pdf", api.handleCompress)

	pdfGroup := r.Group("/pdf")
	{
		pdfGroup.POST("/merge", api.handleMerge)
		pdfGroup.POST("/split", api.handleSplit)
		pdfGroup.POST("/rotate", api.handleRotate)
		pdfGroup.POST("/protect", api.handleProtect)
		pdfGroup.POST("/unlock", api.handleUnlock)
		pdfGroup.POST("/watermark", api.handleWatermark)
		pdfGroup.POST("/page-numbers", api.handlePageNumbers)
		pdfGroup.POST("/delete-pages", api.handleDeletePages)
		pdfGroup.POST("/reorder", api.handleReorder)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleListCapabilities(c *gin.Context) {
	c.JSON(http.StatusOK, a.capabilities)
}

// single wraps the common case: one upload under "file", one transformer.
func (a *API) single(c *gin.Context, t convert.Transformer) {
	a.run(c, func(ws workspace.Handle) (convert.Transformer, []string, error) {
		input, err := stageUpload(c, ws, "file")
		if err != nil {
			return nil, nil, err
		}
		return t, []string{input}, nil
	})
}

func (a *API) handleWordToPDF(c *gin.Context) {
	a.single(c, &convert.SofficeConvert{
		Runner: a.runner,
		Binary: a.cfg.SofficeBin,
		Target: "pdf:writer_pdf_Export",
		Ext:    "pdf",
	})
}

func (a *API) handlePDFToWord(c *gin.Context) {
	a.single(c, &convert.SofficeConvert{
		Runner:   a.runner,
		Binary:   a.cfg.SofficeBin,
		Target:   "docx",
		Ext:      "docx",
		InFilter: "writer_pdf_import",
	})
}

func (a *API) handlePPTToPDF(c *gin.Context) {
	a.single(c, &convert.SofficeConvert{
		Runner: a.runner,
		Binary: a.cfg.SofficeBin,
		Target: "pdf",
		Ext:    "pdf",
	})
}

func (a *API) handleExcelToPDF(c *gin.Context) {
	a.single(c, &convert.SofficeConvert{
		Runner: a.runner,
		Binary: a.cfg.SofficeBin,
		Target: "pdf",
		Ext:    "pdf",
	})
}

func (a *API) handlePDFToJPG(c *gin.Context) {
	a.single(c, &convert.PDFToJPEG{
		Runner: a.runner,
		Binary: a.cfg.PdftoppmBin,
		DPI:    a.cfg.RenderDPI,
	})
}

func (a *API) handleJPGToPDF(c *gin.Context) {
	a.single(c, convert.ImagesToPDF{})
}

func (a *API) handleImagesToPDF(c *gin.Context) {
	a.run(c, func(ws workspace.Handle) (convert.Transformer, []string, error) {
		inputs, err := stageUploads(c, ws, "files")
		if err != nil {
			return nil, nil, err
		}
		return convert.ImagesToPDF{}, inputs, nil
	})
}

func (a *API) handleHTMLToPDF(c *gin.Context) {
	html := c.PostForm("html")
	url := strings.TrimSpace(c.PostForm("url"))
	a.run(c, func(ws workspace.Handle) (convert.Transformer, []string, error) {
		return &convert.HTMLToPDF{
			Runner: a.runner,
			Binary: a.cfg.WkhtmltopdfBin,
			HTML:   html,
			URL:    url,
		}, nil, nil
	})
}

func (a *API) handlePDFToPPTX(c *gin.Context) {
	a.single(c, &convert.PDFToPPTX{
		Runner: a.runner,
		Binary: a.cfg.PdftoppmBin,
		DPI:    a.cfg.RenderDPI,
	})
}

func (a *API) handlePDFToExcel(c *gin.Context) {
	a.single(c, convert.PDFToExcel{})
}

func (a *API) handleCompress(c *gin.Context) {
	quality := formInt(c, "quality", 85)
	a.single(c, &convert.GhostscriptCompress{
		Runner:  a.runner,
		Binary:  a.cfg.GhostscriptBin,
		Quality: quality,
	})
}

func (a *API) handleMerge(c *gin.Context) {
	a.run(c, func(ws workspace.Handle) (convert.Transformer, []string, error) {
		inputs, err := stageUploads(c, ws, "files")
		if err != nil {
			return nil, nil, err
		}
		if len(inputs) < 2 {
			return nil, nil, &convert.Error{Kind: convert.InvalidInput, Detail: "at least 2 files are required for merge"}
		}
		return convert.MergePDF{}, inputs, nil
	})
}

func (a *API) handleSplit(c *gin.Context) {
	from := formInt(c, "from_page", 1)
	to := formInt(c, "to_page", 0)
	a.single(c, convert.SplitPDF{From: from, To: to})
}

func (a *API) handleRotate(c *gin.Context) {
	degrees := formInt(c, "degrees", 90)
	a.single(c, convert.RotatePDF{Degrees: degrees})
}

func (a *API) handleProtect(c *gin.Context) {
	password := c.PostForm("password")
	if password == "" {
		respondMessage(c, http.StatusBadRequest, "password is required")
		return
	}
	a.single(c, convert.ProtectPDF{Password: password})
}

func (a *API) handleUnlock(c *gin.Context) {
	password := c.PostForm("password")
	if password == "" {
		respondMessage(c, http.StatusBadRequest, "password is required")
		return
	}
	a.single(c, convert.UnlockPDF{Password: password})
}

func (a *API) handleWatermark(c *gin.Context) {
	text := strings.TrimSpace(c.PostForm("text"))
	opacity := formFloat(c, "opacity", 0.2)
	size := formInt(c, "size", 48)
	a.run(c, func(ws workspace.Handle) (convert.Transformer, []string, error) {
		input, err := stageUpload(c, ws, "file")
		if err != nil {
			return nil, nil, err
		}
		imagePath := ""
		if _, imgErr := c.FormFile("image"); imgErr == nil {
			imagePath, err = stageUpload(c, ws, "image")
			if err != nil {
				return nil, nil, err
			}
		}
		return convert.WatermarkPDF{
			Text:    text,
			Image:   imagePath,
			Opacity: opacity,
			Size:    size,
		}, []string{input}, nil
	})
}

func (a *API) handlePageNumbers(c *gin.Context) {
	start := formInt(c, "start", 1)
	format := c.PostForm("format")
	if format == "" {
		format = "{n}"
	}
	position := c.PostForm("position")
	if position == "" {
		position = "bottom-right"
	}
	size := formInt(c, "size", 10)
	a.single(c, convert.PageNumbers{
		Start:    start,
		Format:   format,
		Position: position,
		Size:     size,
	})
}

func (a *API) handleDeletePages(c *gin.Context) {
	spec := strings.TrimSpace(c.PostForm("pages"))
	if spec == "" {
		respondMessage(c, http.StatusBadRequest, "pages is required")
		return
	}
	a.single(c, convert.DeletePages{Spec: spec})
}

func (a *API) handleReorder(c *gin.Context) {
	spec := strings.TrimSpace(c.PostForm("order"))
	if spec == "" {
		respondMessage(c, http.StatusBadRequest, "order is required")
		return
	}
	a.single(c, convert.ReorderPDF{Spec: spec})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
