package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Trackerx/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type trackingAPI struct {
	trackingService TrackingService
	log             *zap.Logger
}

func New(trackingService TrackingService, log *zap.Logger) *trackingAPI {
	return &trackingAPI{
		trackingService: trackingService,
		log:             log,
	}
}

func (api *trackingAPI) Routes(group *helper.RouteGroup) {
	group.POST("/trips", api.startTrip)
	group.POST("/trips/:id/fixes", api.pushFix)
	group.POST("/trips/:id/pause", api.pauseTrip)
	group.POST("/trips/:id/resume", api.resumeTrip)
	group.POST("/trips/:id/stop", api.stopTrip)
	group.POST("/trips/:id/snapshot", api.snapshot)
	group.DELETE("/trips/:id", api.deleteTrip)
	group.DELETE("/trips/:id/segments/:segId", api.discardSegment)
	group.GET("/trips/:id/track", api.track)
	group.GET("/trips/:id/segments", api.segments)
	group.GET("/trips/:id/window", api.window)
}

func (api *trackingAPI) startTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	tripID, err := api.trackingService.StartTrip()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusCreated, envelope{"data": NewStartTripResponse(tripID)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *trackingAPI) pushFix(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request fixRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	accepted, err := api.trackingService.PushFix(p.ByName("id"), request.ToFix())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	resp := NewPushFixResponse(accepted, api.trackingService.LivePolicy(p.ByName("id")))
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *trackingAPI) pauseTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.trackingService.PauseTrip(p.ByName("id")); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.okMessage(w, r, "paused")
}

func (api *trackingAPI) resumeTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.trackingService.ResumeTrip(p.ByName("id")); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.okMessage(w, r, "recording")
}

func (api *trackingAPI) stopTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.trackingService.StopTrip(p.ByName("id")); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.okMessage(w, r, "stopped")
}

func (api *trackingAPI) deleteTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.trackingService.DeleteTrip(p.ByName("id")); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.okMessage(w, r, "deleted")
}

func (api *trackingAPI) discardSegment(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	segID, err := strconv.ParseUint(p.ByName("segId"), 10, 32)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("segId must be a valid unsigned int"))
		return
	}
	if err := api.trackingService.DiscardSegment(p.ByName("id"), uint32(segID)); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.okMessage(w, r, "discarded")
}

func (api *trackingAPI) track(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	tripID := p.ByName("id")
	fixes, pathPolyline, err := api.trackingService.Track(tripID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTrackResponse(tripID, fixes, pathPolyline)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *trackingAPI) segments(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	tripID := p.ByName("id")
	infos, err := api.trackingService.Segments(tripID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewSegmentsResponse(tripID, infos)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *trackingAPI) window(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		minLat, minLon, maxLat, maxLon float64
		err                            error
	)
	query := r.URL.Query()

	minLat, err = strconv.ParseFloat(query.Get("min_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("min_lat is required and must be a valid float"))
		return
	}
	minLon, err = strconv.ParseFloat(query.Get("min_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("min_lon is required and must be a valid float"))
		return
	}
	maxLat, err = strconv.ParseFloat(query.Get("max_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("max_lat is required and must be a valid float"))
		return
	}
	maxLon, err = strconv.ParseFloat(query.Get("max_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("max_lon is required and must be a valid float"))
		return
	}

	tripID := p.ByName("id")
	fixes, err := api.trackingService.Window(tripID, minLat, minLon, maxLat, maxLon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewWindowResponse(tripID, fixes)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *trackingAPI) snapshot(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	tripID := p.ByName("id")
	file, err := api.trackingService.Snapshot(tripID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewSnapshotResponse(tripID, file)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *trackingAPI) okMessage(w http.ResponseWriter, r *http.Request, msg string) {
	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": map[string]string{"status": msg}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
