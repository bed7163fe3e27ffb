package router

import (
	"io"
	"net"
	"net/http"

	"go.uber.org/zap"
)

/*
upstream forwards a request to another listener of this process and then
splices the two tcp streams together, so clients can reach the fix-stream
websocket through the main api port. after the handshake is replayed the
connection is hijacked and bytes are copied both ways until either side
closes.
*/
func (api *API) upstream(name, network, addr string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		peer, err := net.Dial(network, addr)
		if err != nil {
			api.log.Error("dial upstream failed",
				zap.String("upstream", name), zap.String("addr", addr), zap.Error(err))
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if err := r.Write(peer); err != nil {
			api.log.Error("replay request to upstream failed",
				zap.String("upstream", name), zap.Error(err))
			peer.Close()
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		hj, ok := w.(http.Hijacker)
		if !ok {
			api.log.Error("response writer does not support hijacking",
				zap.String("upstream", name))
			peer.Close()
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			api.log.Error("hijack failed",
				zap.String("upstream", name), zap.Error(err))
			peer.Close()
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		splice := func(dst io.Writer, src io.Reader) {
			defer peer.Close()
			defer conn.Close()
			io.Copy(dst, src)
		}
		go splice(peer, conn)
		go splice(conn, peer)
	}
}
