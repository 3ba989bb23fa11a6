package room

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"roombook/infras/otel"
	"roombook/infras/realtime"
	availabilityDto "roombook/internal/domains/availability/model/dto"
	availabilityModel "roombook/internal/domains/availability/model"
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/domains/room/service"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/validator"
	"roombook/transport/http/response"
)

var sortableColumns = []string{
	model.TableName + "." + model.FieldName,
	model.TableName + "." + model.FieldCapacity,
	model.TableName + "." + constant.FieldCreatedAt,
}

type Handler struct {
	service service.Room
	hub     realtime.Hub
	otel    otel.Otel
}

func New(service service.Room, hub realtime.Hub, otel otel.Otel) Handler {
	return Handler{
		service: service,
		hub:     hub,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Get("/{id}/slots/ws", handler.SubscribeSlots)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
	})
}

func callerID(request *http.Request) string {
	id, _ := request.Context().Value(constant.ContextKeyUserID).(string)

	return id
}

// formValue reports whether key was sent at all, so an update can tell "absent" from "empty".
func formValue(form *multipart.Form, key string) (string, bool) {
	if form == nil || len(form.Value[key]) == 0 {
		return "", false
	}

	return form.Value[key][0], true
}

func parseCapacity(form *multipart.Form) (*int, error) {
	value, ok := formValue(form, model.FieldCapacity)
	if !ok || value == "" {
		return nil, nil //nolint:nilnil
	}

	capacity, err := shared.ConvertStringToInt(value)
	if err != nil {
		return nil, failure.BadRequestFromString("capacity must be a number") //nolint:wrapcheck
	}

	return capacity, nil
}

// parseIcon returns nil when no icon part was sent. The caller closes the returned file.
func parseIcon(request *http.Request) (*dto.IconUpload, multipart.File, error) {
	file, header, err := request.FormFile(constant.FormFileIcon)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}

	if err != nil {
		return nil, nil, failure.BadRequest(err) //nolint:wrapcheck
	}

	return &dto.IconUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(constant.RequestHeaderContentType),
		Size:        header.Size,
		File:        file,
	}, file, nil
}

func parseForm(writer http.ResponseWriter, request *http.Request) error {
	if !strings.HasPrefix(request.Header.Get(constant.RequestHeaderContentType), constant.ContentTypeMultipartFormData) {
		return failure.BadRequestFromString("request must be " + constant.ContentTypeMultipartFormData) //nolint:wrapcheck
	}

	request.Body = http.MaxBytesReader(writer, request.Body, constant.RequestMaxMemory)

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		return failure.BadRequest(err) //nolint:wrapcheck
	}

	return nil
}

// CreateRoom handles the creation of a new room.
// @Summary Create a new room
// @Description Create a room, optionally uploading an icon to object storage.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Room name"
// @Param capacity formData integer false "Room capacity"
// @Param icon formData file false "Room icon (png, jpeg or svg, at most 1 MiB)"
// @Success 201 {object} response.Message "Room created successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	if err := parseForm(writer, request); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(writer, err)

		return
	}

	name, _ := formValue(request.MultipartForm, model.FieldName)
	req := dto.CreateRoomRequest{Name: name}

	capacity, err := parseCapacity(request.MultipartForm)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	req.Capacity = capacity

	icon, file, err := parseIcon(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	if file != nil {
		defer file.Close()
	}

	req.Icon = icon

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	user := callerID(request)

	if err := handler.service.Create(ctx, user, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Room created successfully by user " + user)

	response.WithMessage(writer, http.StatusCreated, "Room created successfully")
}

// GetRooms retrieves all rooms based on query parameters.
// @Summary Get all rooms
// @Description Retrieve all rooms with an optional name filter and pagination.
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
func (handler *Handler) GetRooms(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)
	queryParams.RestrictSort(sortableColumns[0], sortableColumns...)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if name := request.URL.Query().Get(constant.RequestParamName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
func (handler *Handler) GetRoomByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	room, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, room)
}

// SubscribeSlots streams slot change notifications for one room and day over a websocket.
// @Summary Subscribe to slot updates
// @Description Upgrade to a websocket that receives {"type":"slots.updated"} whenever the room's bookings on the day change.
// @Tags Room
// @Param id path string true "Room ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} response.Error
// @Router /v1/rooms/{id}/slots/ws [get]
func (handler *Handler) SubscribeSlots(writer http.ResponseWriter, request *http.Request) {
	_, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SubscribeSlots")

	req := availabilityDto.GetSlotsRequest{
		RoomID: chi.URLParam(request, constant.RequestParamID),
		Date:   request.URL.Query().Get(constant.RequestParamDate),
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		scope.End()

		response.WithError(writer, err)

		return
	}

	topic := availabilityModel.Topic(req.RoomID, req.Date)
	scope.SetAttribute("realtime.topic", topic)
	scope.End()

	if err := handler.hub.Serve(writer, request, topic); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("slot subscription ended")
	}
}

// UpdateRoom updates an existing room by its ID.
// @Summary Update a room by ID
// @Description Update any of name, capacity and icon. A new icon replaces and deletes the previous one.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Room ID"
// @Param name formData string false "Room name"
// @Param capacity formData integer false "Room capacity"
// @Param icon formData file false "Room icon (png, jpeg or svg, at most 1 MiB)"
// @Success 200 {object} response.Message "Room updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	if err := parseForm(writer, request); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(writer, err)

		return
	}

	req := dto.UpdateRoomRequest{}

	if name, ok := formValue(request.MultipartForm, model.FieldName); ok {
		req.Name = &name
	}

	capacity, err := parseCapacity(request.MultipartForm)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	req.Capacity = capacity

	icon, file, err := parseIcon(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	if file != nil {
		defer file.Close()
	}

	req.Icon = icon

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	user := callerID(request)

	if err := handler.service.Update(ctx, chi.URLParam(request, constant.RequestParamID), user, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update room")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Room updated successfully by user " + user)

	response.WithMessage(writer, http.StatusOK, "Room updated successfully")
}

// DeleteRoom deletes a room and, through the foreign key, its reservations.
// @Summary Delete a room by ID
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message "Room deleted successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete room")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Room deleted successfully by user " + callerID(request))

	response.WithMessage(writer, http.StatusOK, "Room deleted successfully")
}
