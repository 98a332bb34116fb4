package main

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/imagescale"
	"github.com/oliverisaac/clarity/lib/stores"
	"github.com/oliverisaac/clarity/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type visionBoardResponse struct {
	Items []types.VisionItem `json:"items"`
	State stores.BoardState  `json:"state"`
}

// uploadTracker counts photo uploads still being scaled, per owner.
type uploadTracker struct {
	mu       sync.Mutex
	inFlight map[string]int
}

func (u *uploadTracker) begin(owner string) func() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inFlight == nil {
		u.inFlight = map[string]int{}
	}
	u.inFlight[owner]++

	return func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.inFlight[owner]--
		if u.inFlight[owner] <= 0 {
			delete(u.inFlight, owner)
		}
	}
}

func (u *uploadTracker) active(owner string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inFlight[owner] > 0
}

// readUpload copies the whole upload so scaling never shares the request's
// file with the handler.
func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded photo")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	return data, errors.Wrap(err, "reading uploaded photo")
}

func listVision(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := stores.NewVisionBoard(a.scope(c)).List(c.Request().Context())
		if err != nil {
			return errors.Wrap(err, "listing vision board")
		}
		return c.JSON(http.StatusOK, visionBoardResponse{
			Items: items,
			State: stores.StateOf(len(items), a.uploads.active(owner(c))),
		})
	}
}

func pinVisionItem(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		board := stores.NewVisionBoard(a.scope(c))

		state, err := board.State(ctx)
		if err != nil {
			return errors.Wrap(err, "reading vision board")
		}
		if state == stores.BoardFull {
			return echo.NewHTTPError(http.StatusConflict, stores.ErrCapacityExceeded.Error())
		}

		header, err := c.FormFile("image")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "choose a photo to pin")
		}
		data, err := readUpload(header)
		if err != nil {
			return err
		}

		done := a.uploads.begin(owner(c))
		defer done()

		var outcome imagescale.Outcome
		select {
		case outcome = <-imagescale.DownscaleAsync(bytes.NewReader(data)):
		case <-ctx.Done():
			logrus.Debug("Client left before the photo was scaled, discarding it")
			return ctx.Err()
		}
		if errors.Is(outcome.Err, imagescale.ErrDecode) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "that file does not look like a photo")
		}
		if outcome.Err != nil {
			return errors.Wrap(outcome.Err, "scaling photo")
		}

		item := types.NewVisionItem(outcome.Result.DataURI, a.now())
		err = board.Append(ctx, item)
		if errors.Is(err, stores.ErrCapacityExceeded) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		if err != nil {
			return errors.Wrap(err, "pinning photo")
		}
		return respond(c, http.StatusCreated, item)
	}
}

func captionVisionItem(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		found, err := stores.NewVisionBoard(a.scope(c)).SetCaption(c.Request().Context(), c.Param("id"), c.FormValue("caption"))
		if err != nil {
			return errors.Wrap(err, "captioning photo")
		}
		if !found {
			return echo.NewHTTPError(http.StatusNotFound, "no such photo")
		}
		return respond(c, http.StatusNoContent, nil)
	}
}

func unpinVisionItem(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		found, err := stores.NewVisionBoard(a.scope(c)).Remove(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errors.Wrap(err, "unpinning photo")
		}
		if !found {
			return echo.NewHTTPError(http.StatusNotFound, "no such photo")
		}
		return respond(c, http.StatusNoContent, nil)
	}
}
