package file

import (
	"file-share-api/internal/application/ports"
	"file-share-api/internal/domain/file"
)

func ToResponseFile(f file.File, shareURL func(token string) string) File {
	var out = File{
		ID:               f.ID,
		Name:             f.Name,
		MimeType:         f.MimeType,
		SizeBytes:        f.SizeBytes,
		ShareToken:       f.ShareToken,
		CreatedAt:        f.CreatedAt,
		DownloadCount:    f.DownloadCount,
		LastDownloadedAt: f.LastDownloadedAt,
	}
	if shareURL != nil {
		out.ShareURL = shareURL(f.ShareToken)
	}

	return out
}

func ToResponseFiles(fs file.Files, shareURL func(token string) string) Files {
	out := make(Files, len(fs))
	for idx, f := range fs {
		out[idx] = ToResponseFile(*f, shareURL)
	}

	return out
}

func ToResponseShare(v ports.ShareView, downloadPath string) Share {
	return Share{
		Name:          v.Name,
		MimeType:      v.MimeType,
		SizeBytes:     v.SizeBytes,
		CreatedAt:     v.CreatedAt,
		OwnerName:     v.OwnerDisplayName,
		DownloadCount: v.DownloadCount,
		DownloadPath:  downloadPath,
	}
}

func ToResponseDownload(d ports.Download) Download {
	return Download{
		URL:       d.URL,
		Name:      d.Name,
		ExpiresIn: int(d.ExpiresIn.Seconds()),
	}
}
