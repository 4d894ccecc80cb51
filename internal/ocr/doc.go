// Package ocr reads printed or handwritten header text from answer sheets
// using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Reader
// implements omr.HeaderReader, so a marked sheet can carry the student name
// or ID written in its header box.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// The default language is English ("eng"). Other languages can be specified
// using their Tesseract language codes ("deu", "fra", "spa", ...).
//
// # Functions
//
//   - Recognize: OCR of an in-memory image, with word bounding boxes
//   - ExtractTextFromRegion: OCR of a cropped, optionally enlarged region
//   - Reader.ReadHeader: header text as a single trimmed line
//
// Images are passed to Tesseract from memory; no temporary files are written.
//
// # Error Handling
//
// Functions return errors for regions outside the image, unsupported
// language codes, and Tesseract initialization failures. If bounding box
// extraction fails, Recognize still returns the text with an empty Regions
// slice.
package ocr
