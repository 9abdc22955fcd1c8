package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/viert/uidstore/common"
	"github.com/viert/uidstore/index"
)

// InfoResponse is a json-marked-up structure for info handler
type InfoResponse struct {
	AppName      string `json:"app_name"`
	State        string `json:"state"`
	MediaKind    string `json:"media_kind"`
	RegionOffset int64  `json:"region_offset"`
	RegionSize   int64  `json:"region_size"`
	Capacity     int64  `json:"capacity"`
	Entries      int    `json:"entries"`
	EncodedSize  int    `json:"encoded_size"`
	Dirty        bool   `json:"dirty"`
}

// EntryItem describes an entry in a listing
type EntryItem struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type EntryListResponse struct {
	Items []*EntryItem `json:"items"`
}

// EntryData holds entry contents; Data is base64 in JSON
type EntryData struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Data   []byte `json:"data"`
}

// IncomingData is a json-marked-up structure for incoming writes
type IncomingData struct {
	Offset int    `json:"offset"`
	Data   []byte `json:"data"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) appInfo(r *http.Request) (interface{}, error) {
	st := s.storage.Stat()
	return &InfoResponse{
		AppName:      "uidstore",
		State:        st.State.String(),
		MediaKind:    st.Kind.String(),
		RegionOffset: st.Region.Offset,
		RegionSize:   st.Region.Size,
		Capacity:     st.Capacity,
		Entries:      st.Entries,
		EncodedSize:  st.EncodedSize,
		Dirty:        st.Dirty,
	}, nil
}

func (s *Server) listEntries(r *http.Request) (interface{}, error) {
	list, err := s.storage.List()
	if err != nil {
		return nil, err
	}
	elr := &EntryListResponse{Items: make([]*EntryItem, 0, len(list))}
	for _, ei := range list {
		elr.Items = append(elr.Items, &EntryItem{Name: ei.Name, Size: ei.Size})
	}
	return elr, nil
}

func queryInt(r *http.Request, key string, dflt int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return dflt, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, common.NewHTTPError(http.StatusBadRequest, "invalid %s '%s'", key, v)
	}
	return i, nil
}

func (s *Server) getEntry(r *http.Request) (interface{}, error) {
	name := mux.Vars(r)["name"]

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return nil, err
	}
	length, err := queryInt(r, "length", index.MaxDataLen)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Read(name, offset, length)
	if err != nil {
		return nil, err
	}
	return &EntryData{Name: name, Offset: offset, Data: data}, nil
}

func getIncomingData(r *http.Request) (*IncomingData, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "application/json" {
		return nil, common.NewHTTPError(http.StatusBadRequest, "this handler accepts JSON data only")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, common.NewHTTPError(http.StatusInternalServerError, "error reading request body: %s", err)
	}

	var input IncomingData
	err = json.Unmarshal(body, &input)
	if err != nil {
		return nil, common.NewHTTPError(http.StatusBadRequest, "error parsing json data: %s", err)
	}
	return &input, nil
}

func (s *Server) writeEntry(r *http.Request) (interface{}, error) {
	name := mux.Vars(r)["name"]

	input, err := getIncomingData(r)
	if err != nil {
		return nil, err
	}

	err = s.storage.Write(name, input.Offset, input.Data)
	if err != nil {
		log.Errorf("error writing entry %q: %s", name, err)
		return nil, err
	}
	log.Infof("wrote %d bytes to %q at %d", len(input.Data), name, input.Offset)
	return &OKResponse{OK: true}, nil
}

func (s *Server) removeEntry(r *http.Request) (interface{}, error) {
	name := mux.Vars(r)["name"]
	if err := s.storage.Remove(name); err != nil {
		return nil, err
	}
	log.Infof("removed %q", name)
	return &OKResponse{OK: true}, nil
}

func (s *Server) save(r *http.Request) (interface{}, error) {
	if err := s.storage.Save(); err != nil {
		return nil, err
	}
	log.Info("store saved")
	return &OKResponse{OK: true}, nil
}
