package domain

// Capability describes one supported conversion operation. The list is built
// once at process start and served verbatim by the listing endpoint.
type Capability struct {
	Name     string `json:"name"`
	FromType string `json:"from_type"`
	ToType   string `json:"to_type"`
	Endpoint string `json:"endpoint"`
}

// Capabilities returns the fixed set of operations the service offers.
// "pdf[]" marks a multi-file side: several uploads in, or an archive out.
func Capabilities() []Capability {
	return []Capability{
		{Name: "Word to PDF", FromType: "docx|doc", ToType: "pdf", Endpoint: "/convert/word-to-pdf"},
		{Name: "PDF to Word", FromType: "pdf", ToType: "docx", Endpoint: "/convert/pdf-to-word"},
		{Name: "PDF to JPG", FromType: "pdf", ToType: "jpg", Endpoint: "/convert/pdf-to-jpg"},
		{Name: "JPG to PDF", FromType: "jpg|jpeg|png", ToType: "pdf", Endpoint: "/convert/jpg-to-pdf"},
		{Name: "Compress PDF", FromType: "pdf", ToType: "pdf", Endpoint: "/compress/pdf"},
		{Name: "Merge PDF", FromType: "pdf[]", ToType: "pdf", Endpoint: "/pdf/merge"},
		{Name: "Split PDF", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/split"},
		{Name: "Rotate PDF", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/rotate"},
		{Name: "Protect PDF", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/protect"},
		{Name: "Unlock PDF", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/unlock"},
		{Name: "Watermark PDF", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/watermark"},
		{Name: "Page Numbers", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/page-numbers"},
		{Name: "Delete Pages", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/delete-pages"},
		{Name: "Reorder PDF", FromType: "pdf", ToType: "pdf", Endpoint: "/pdf/reorder"},
		{Name: "HTML to PDF", FromType: "html|url", ToType: "pdf", Endpoint: "/convert/html-to-pdf"},
		{Name: "PowerPoint to PDF", FromType: "ppt|pptx", ToType: "pdf", Endpoint: "/convert/ppt-to-pdf"},
		{Name: "Excel to PDF", FromType: "xls|xlsx", ToType: "pdf", Endpoint: "/convert/excel-to-pdf"},
		{Name: "Images to PDF", FromType: "jpg|jpeg|png[]", ToType: "pdf", Endpoint: "/convert/images-to-pdf"},
		{Name: "PDF to PowerPoint", FromType: "pdf", ToType: "pptx", Endpoint: "/convert/pdf-to-pptx"},
		{Name: "PDF to Excel", FromType: "pdf", ToType: "xlsx", Endpoint: "/convert/pdf-to-excel"},
	}
}

var mediaTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"zip":  "application/zip",
	"html": "text/html",
	"txt":  "text/plain",
}

// MediaTypeFor maps a produced file extension (without dot) to its MIME type.
func MediaTypeFor(ext string) string {
	if mt, ok := mediaTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
