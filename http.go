package alena

import (
	"net/http"
	"strconv"

	"github.com/go-martini/martini"
	"github.com/martini-contrib/render"
	"go.uber.org/zap"

	"github.com/zzzzlzzzz/alena/driver"
)

const API = ""

const MAX_PAGE_LIMIT = 100

// HTTPHandler serves the read only inspection API.
func (s *Server) HTTPHandler() http.Handler {
	m := martini.New()
	m.Map(zap.NewStdLog(s.base.With(zap.String("component", "http"))))
	m.Use(martini.Logger())
	m.Use(martini.Recovery())
	m.Use(render.Renderer(render.Options{
		Charset:    "UTF-8",
		IndentJSON: true,
	}))
	r := martini.NewRouter()
	m.MapTo(r, (*martini.Routes)(nil))
	m.Action(r.Handle)
	mart := &martini.ClassicMartini{Martini: m, Router: r}

	api(mart, s)
	return mart
}

func api(mart *martini.ClassicMartini, s *Server) {

	mart.Get(API+"/tasks/", func(req *http.Request, r render.Render) {
		qs := req.URL.Query()
		var start, limit int
		var err error
		if start, err = strconv.Atoi(qs.Get("start")); err != nil || start < 0 {
			start = 0
		}
		if limit, err = strconv.Atoi(qs.Get("limit")); err != nil || limit <= 0 {
			limit = 10
		}
		if limit > MAX_PAGE_LIMIT {
			limit = MAX_PAGE_LIMIT
		}
		count, err := s.store.Count()
		if err != nil {
			r.JSON(http.StatusInternalServerError, map[string]interface{}{"err": err.Error()})
			return
		}
		var tasks = make([]driver.Task, 0, limit)
		if uint64(start) < count {
			iter := s.store.NewIterator(uint32(start))
			for len(tasks) < limit && iter.Next() {
				tasks = append(tasks, iter.Value())
			}
			err = iter.Error()
			iter.Close()
		}
		if err != nil {
			r.JSON(http.StatusInternalServerError, map[string]interface{}{"err": err.Error()})
			return
		}
		r.JSON(http.StatusOK, map[string]interface{}{"tasks": tasks, "total": count, "current": start})
	})

	mart.Get(API+"/tasks/:task_id", func(params martini.Params, r render.Render) {
		id, err := strconv.ParseUint(params["task_id"], 10, 32)
		if err != nil {
			r.JSON(http.StatusBadRequest, map[string]interface{}{"err": "invalid task id"})
			return
		}
		task, ok, err := s.store.Get(uint32(id))
		if err != nil {
			r.JSON(http.StatusInternalServerError, map[string]interface{}{"err": err.Error()})
			return
		}
		if !ok {
			r.JSON(http.StatusNotFound, map[string]interface{}{"err": driver.ErrNotFound.Error()})
			return
		}
		r.JSON(http.StatusOK, map[string]driver.Task{"task": task})
	})

	mart.Get(API+"/status", func(r render.Render) {
		r.JSON(http.StatusOK, map[string]interface{}{
			"types":   s.stats.All(),
			"backlog": s.queue.Len(),
		})
	})
}
