package room_dto

type CreateRoomRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

type ListRoomsRequest struct {
	Search string `json:"search,omitempty" query:"search"`
}
