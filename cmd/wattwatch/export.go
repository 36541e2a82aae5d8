package main

import (
	"os"
	"path/filepath"

	"codeberg.org/mutker/wattwatch/internal/config"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
	"codeberg.org/mutker/wattwatch/internal/session"
)

const exportFilePerm = 0o644

func writeExports(sess *session.Session, opts *config.Options, log logger.Logger) {
	if opts.CSVOut != "" {
		out, err := sess.CSV()
		if err == nil {
			err = writeFile(opts.CSVOut, out)
		}
		if err != nil {
			log.Error().Err(err).Str("path", opts.CSVOut).Msg("Failed to write CSV export")
		} else {
			log.Info().Str("path", opts.CSVOut).Msg("CSV export written")
		}
	}

	if opts.ReportOut != "" {
		out, err := sess.HTML()
		switch {
		case errors.HasCode(err, errors.ErrNoData):
			log.Warn().Msg("No readings yet, skipping HTML report")
			return
		case err == nil:
			err = writeFile(opts.ReportOut, out)
		}
		if err != nil {
			log.Error().Err(err).Str("path", opts.ReportOut).Msg("Failed to write HTML report")
		} else {
			log.Info().Str("path", opts.ReportOut).Msg("HTML report written")
		}
	}
}

// writeFile replaces path atomically.
func writeFile(path, content string) error {
	errFactory := errors.New()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return errFactory.Wrap(errors.ErrInternal, err)
	}
	if err := tmp.Chmod(exportFilePerm); err != nil {
		tmp.Close()
		return errFactory.Wrap(errors.ErrInternal, err)
	}
	if err := tmp.Close(); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}
