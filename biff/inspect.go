package biff

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"strings"
)

// FileFormatDescriptions maps the results of InspectFormat to
// human-readable descriptions.
var FileFormatDescriptions = map[string]string{
	"biff": "Raw BIFF workbook stream",
	"xls":  "Excel xls (OLE2 compound document)",
	"xlsb": "Excel 2007 xlsb file",
	"xlsx": "Excel xlsx file",
	"ods":  "Openoffice.org ODS file",
	"zip":  "Unknown ZIP file",
	"":     "Unknown file type",
}

// XLS_SIGNATURE is the magic cookie that should appear in the first 8 bytes of an XLS file.
var XLS_SIGNATURE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ZIP_SIGNATURE is the magic cookie for ZIP files.
var ZIP_SIGNATURE = []byte("PK\x03\x04")

// InspectFormat returns the type of content, or "" if it cannot be
// determined. The result is always a key of FileFormatDescriptions.
//
// Only "biff" content can be handed to ParseStream; the Workbook stream of
// an "xls" file has to be extracted from its compound document first.
func InspectFormat(content []byte) string {
	switch {
	case bytes.HasPrefix(content, XLS_SIGNATURE):
		return "xls"
	case bytes.HasPrefix(content, ZIP_SIGNATURE):
		return inspectZip(content)
	case len(content) >= 4 && IsBOF(int(binary.LittleEndian.Uint16(content[0:2]))):
		return "biff"
	}
	return ""
}

func inspectZip(content []byte) string {
	zf, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "zip"
	}
	// Some third party files use backslashes and lower case names.
	names := make(map[string]bool, len(zf.File))
	for _, f := range zf.File {
		names[strings.ToLower(strings.ReplaceAll(f.Name, "\\", "/"))] = true
	}
	switch {
	case names["xl/workbook.xml"]:
		return "xlsx"
	case names["xl/workbook.bin"]:
		return "xlsb"
	case names["content.xml"]:
		return "ods"
	}
	return "zip"
}

// ExpandPath replaces a leading ~ in path with the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", homeDir, 1), nil
}
